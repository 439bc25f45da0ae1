package ui

//go:generate templ generate

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/dialect"
)

// pageData is everything the playground page renders.
type pageData struct {
	Options  core.CompileOptions
	Source   string
	Dialects []*dialect.Dialect
	Sources  []string
	Output   CompileResponse
}

// pageSignals is the initial datastar signal set for the page.
func pageSignals(data pageData) (string, error) {
	signals, err := json.Marshal(map[string]string{
		"source":        data.Source,
		"target":        data.Options.Target.String(),
		"libraryImport": data.Options.LibraryImport.String(),
	})
	if err != nil {
		return "", err
	}
	return string(signals), nil
}

func openAction(rel string) string {
	return fmt.Sprintf("@get('/open?path=%s')", url.QueryEscape(rel))
}
