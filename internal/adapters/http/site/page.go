package site

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/okian/medaldash/internal/domain/charts"
)

// PageData is everything the dashboard page shows.
type PageData struct {
	Title    string
	Subtitle string
	Sports   []string
	Selected string
	Charts   []charts.ID
}

func withSport(path, sport string) string {
	if sport == "" {
		return path
	}
	return path + "?sport=" + url.QueryEscape(sport)
}

// DashboardPage renders the full page: the sport selector and one image
// panel per chart, every panel requested with the current filter.
func DashboardPage(d PageData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!doctype html><html lang="pt-BR"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`)
		p.text(d.Title)
		p.raw(`</title><link rel="stylesheet" href="/static/style.css"></head><body>`)

		p.raw(`<header><h1>`)
		p.text(d.Title)
		p.raw(`</h1><p>`)
		p.text(d.Subtitle)
		p.raw(`</p></header><main>`)

		p.raw(`<form class="filter" method="get" action="/">`)
		p.raw(`<label for="sport_filter">Esporte</label>`)
		p.raw(`<select id="sport_filter" name="sport" onchange="this.form.submit()">`)
		p.option("", "Selecione um esporte (opcional)", d.Selected == "")
		for _, s := range d.Sports {
			p.option(s, s, s == d.Selected)
		}
		p.raw(`</select><noscript><button type="submit">Filtrar</button></noscript></form>`)

		p.raw(`<nav class="links">`)
		p.link(withSport("/api/export.xlsx", d.Selected), "Baixar planilha")
		p.link(withSport("/api/dashboard", d.Selected), "Dados (JSON)")
		p.link("/api-docs", "API")
		p.raw(`</nav>`)

		for _, id := range d.Charts {
			p.raw(`<figure class="chart" id="`)
			p.text(string(id))
			p.raw(`"><img loading="lazy" src="`)
			p.text(withSport("/charts/"+string(id)+".png", d.Selected))
			p.raw(`" alt="`)
			p.text(string(id))
			p.raw(`"></figure>`)
		}

		p.raw(`</main></body></html>`)
		return p.err
	})
}

// printer writes until the first error and keeps it.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *printer) option(value, label string, selected bool) {
	p.raw(`<option value="`)
	p.text(value)
	if selected {
		p.raw(`" selected>`)
	} else {
		p.raw(`">`)
	}
	p.text(label)
	p.raw(`</option>`)
}

func (p *printer) link(href, label string) {
	p.raw(`<a href="`)
	p.text(href)
	p.raw(`">`)
	p.text(label)
	p.raw(`</a>`)
}
