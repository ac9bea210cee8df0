// Package output renders command results as JSON, optionally narrowed by a
// JMESPath expression.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
	apperrors "github.com/target/mmk-ui-client/internal/errors"
)

// Printer writes values as indented JSON.
type Printer struct {
	w     io.Writer
	query string
}

// NewPrinter returns a Printer for w. An empty query prints values unchanged.
// The query is compiled up front so a malformed expression fails before any request is made.
func NewPrinter(w io.Writer, query string) (*Printer, error) {
	query = strings.TrimSpace(query)
	if query != "" {
		if _, err := jmespath.Compile(query); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid query expression")
		}
	}
	return &Printer{w: w, query: query}, nil
}

// Print renders v. With a query set, v is first converted to its generic JSON form and
// the expression is evaluated against it.
func (p *Printer) Print(v any) error {
	if p.query != "" {
		generic, err := toGeneric(v)
		if err != nil {
			return err
		}
		v, err = jmespath.Search(p.query, generic)
		if err != nil {
			return fmt.Errorf("evaluate query: %w", err)
		}
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	b = append(b, '\n')
	if _, err := p.w.Write(b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func toGeneric(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}
	return out, nil
}
