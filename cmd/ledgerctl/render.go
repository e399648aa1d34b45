// cmd/ledgerctl/render.go
package main

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"

	"papertrade/internal/api/types"
)

func printMarkdown(out string, raw bool) {
	if raw {
		fmt.Print(out)
		return
	}
	rendered, err := glamour.Render(out, "auto")
	if err != nil {
		fmt.Print(out)
		return
	}
	fmt.Print(rendered)
}

func portfolioMarkdown(p types.PortfolioView) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio")
	if len(p.Holdings) == 0 {
		doc.PlainText(md.Italic("No holdings."))
	} else {
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
			},
			Header: []string{"Symbol", "Shares", "Price", "Total"},
			Rows:   [][]string{},
		}
		for _, h := range p.Holdings {
			table.Rows = append(table.Rows, []string{
				h.Symbol,
				strconv.FormatInt(h.Shares, 10),
				h.Price,
				h.Total,
			})
		}
		doc.Table(table)
	}
	doc.PlainText(fmt.Sprintf("%s %s", md.Bold("Cash:"), p.Cash))
	doc.PlainText(fmt.Sprintf("%s %s", md.Bold("Total:"), p.Total))

	return doc.String()
}

func historyMarkdown(h types.HistoryView) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("History")
	doc.H2("Trades")
	if len(h.Trades) == 0 {
		doc.PlainText(md.Italic("No trades."))
	} else {
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignLeft,
				md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
			},
			Header: []string{"Transacted", "Side", "Symbol", "Shares", "Price", "Total"},
			Rows:   [][]string{},
		}
		for _, t := range h.Trades {
			table.Rows = append(table.Rows, []string{
				t.Transacted.Format(time.DateTime),
				t.Side,
				t.Symbol,
				strconv.FormatInt(t.Shares, 10),
				t.Price,
				t.Total,
			})
		}
		doc.Table(table)
	}

	doc.H2("Deposits")
	if len(h.Deposits) == 0 {
		doc.PlainText(md.Italic("No deposits."))
	} else {
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Deposited", "Amount"},
			Rows:      [][]string{},
		}
		for _, d := range h.Deposits {
			table.Rows = append(table.Rows, []string{
				d.Deposited.Format(time.DateTime),
				d.Amount,
			})
		}
		doc.Table(table)
	}

	return doc.String()
}
