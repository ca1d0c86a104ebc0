package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"indexcore/internal/analysis"
	"indexcore/internal/queryparser"
	"indexcore/internal/schema"
)

// queryCmd compiles a query string against the persisted schema and
// prints the resulting terms. indexcore's scope ends at the
// query-parsing front end (see DESIGN.md); there is no searcher here
// to execute the compiled query against postings.
func queryCmd() *cobra.Command {
	var defaultFieldsFlag string

	c := &cobra.Command{
		Use:   "query <query-string>",
		Short: "Compile a query string and print its resolved terms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], defaultFieldsFlag)
		},
	}

	c.Flags().StringVar(&defaultFieldsFlag, "default-fields", "", "comma-separated fields a field-less term expands against (defaults to all indexed, tokenized text fields)")
	return c
}

func runQuery(cmd *cobra.Command, q, defaultFieldsFlag string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")

	sch, err := loadSchema(dataDir)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	defaultFields, err := resolveDefaultFields(sch, defaultFieldsFlag)
	if err != nil {
		return err
	}

	p := queryparser.New(sch, analysis.NewStandardTokenizer(), defaultFields)
	parsed, err := p.ParseQuery(q)
	if err != nil {
		return fmt.Errorf("parse query: %w", err)
	}

	if parsed.NumTerms() == 0 {
		fmt.Println("(empty query)")
		return nil
	}
	for _, t := range parsed.MultiTerm.Terms {
		fmt.Printf("%s:%s\n", t.Field, t.Value)
	}
	return nil
}

func resolveDefaultFields(sch *schema.Schema, flag string) ([]schema.Field, error) {
	if flag == "" {
		var out []schema.Field
		for _, f := range sch.Fields() {
			if opts, err := sch.TextFieldOptions(f); err == nil && opts.IsTokenizedIndexed() {
				out = append(out, f)
			}
		}
		return out, nil
	}

	var out []schema.Field
	for _, name := range strings.Split(flag, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		f, ok := sch.GetField(name)
		if !ok {
			return nil, fmt.Errorf("query: unknown default field %q", name)
		}
		out = append(out, f)
	}
	return out, nil
}
