package uilang

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Loader reads HTML pages and the style sheets they link to.
type Loader struct {
	// FileFinder, if set, is asked first for the location of linked files.
	FileFinder func(string) (string, error)
	// InstructionSelector is copied to every loaded Page.
	InstructionSelector string
	Logger              *slog.Logger
	dirstack            []string
}

// NewLoader returns a Loader that resolves files relative to the working
// directory.
func NewLoader() *Loader {
	return &Loader{}
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.Logger
}

// PushDir adds a directory to the dir stack. Relative file names are resolved
// against the top of the stack. LoadFile pushes the directory of the page.
func (l *Loader) PushDir(dir string) {
	if filepath.IsAbs(dir) {
		l.dirstack = append(l.dirstack, dir)
		return
	}
	var newEntry string
	if len(l.dirstack) > 0 {
		lastEntry := l.dirstack[len(l.dirstack)-1]
		newEntry = filepath.Join(lastEntry, dir)
	} else {
		newEntry = dir
	}
	l.dirstack = append(l.dirstack, newEntry)
}

// PopDir removes the last entry from the dir stack.
func (l *Loader) PopDir() {
	if len(l.dirstack) > 0 {
		l.dirstack = l.dirstack[:len(l.dirstack)-1]
	}
}

// findFile returns the path of the file. If FileFinder is set and knows the
// file, its answer is used. Otherwise relative names are prefixed with the top
// entry of the dir stack.
func (l *Loader) findFile(filename string) (string, error) {
	if l.FileFinder != nil {
		if loc, err := l.FileFinder(filename); loc != "" && err == nil {
			return loc, nil
		}
	}
	if len(l.dirstack) == 0 || filepath.IsAbs(filename) {
		return filename, nil
	}
	return filepath.Join(l.dirstack[len(l.dirstack)-1], filename), nil
}

// LoadFile reads an HTML file. Linked style sheets are searched relative to
// the directory of the file.
func (l *Loader) LoadFile(filename string) (*Page, error) {
	dir, fn := filepath.Split(filename)
	l.PushDir(dir)
	defer l.PopDir()

	filename, err := l.findFile(fn)
	if err != nil {
		return nil, err
	}
	r, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return l.Load(r)
}

// LoadHTML reads the HTML text.
func (l *Loader) LoadHTML(htmltext string) (*Page, error) {
	return l.Load(strings.NewReader(htmltext))
}

// Load parses HTML from r and reads the inline and linked style sheets.
func (l *Loader) Load(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	p := NewPage(doc)
	p.InstructionSelector = l.InstructionSelector
	p.Logger = l.Logger

	var errcond error
	doc.Find("style, link").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if goquery.NodeName(sel) == "style" {
			p.Stylesheets = append(p.Stylesheets, ParseStylesheet("<style>", sel.Text()))
			return true
		}
		if rel, _ := sel.Attr("rel"); !strings.EqualFold(strings.TrimSpace(rel), "stylesheet") {
			return true
		}
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}
		if u, err := url.Parse(href); err != nil || u.Scheme != "" || u.Host != "" {
			l.logger().Debug("skip remote style sheet", "href", href)
			return true
		}
		sheet, err := l.readStylesheet(href)
		if err != nil {
			errcond = err
			return false
		}
		p.Stylesheets = append(p.Stylesheets, sheet)
		return true
	})
	if errcond != nil {
		return nil, errcond
	}
	return p, nil
}

func (l *Loader) readStylesheet(href string) (*Stylesheet, error) {
	filename, err := l.findFile(href)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read style sheet: %w", err)
	}
	return ParseStylesheet(href, string(data)), nil
}
