package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"

	"github.com/fairyhunter13/product-reconciler/internal/identity"
	"github.com/fairyhunter13/product-reconciler/internal/reconcile"
)

type formatter func(w io.Writer, c reconcile.Collection) error

// row is the printed shape of an entity.
type row struct {
	UID      string  `json:"uid" yaml:"uid"`
	ID       string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string  `json:"name" yaml:"name"`
	Price    float64 `json:"price" yaml:"price"`
}

type listing struct {
	Count      int     `json:"count" yaml:"count"`
	TotalValue float64 `json:"total_value" yaml:"total_value"`
	Products   []row   `json:"products" yaml:"products"`
}

func formatterFor(name string) (formatter, error) {
	switch strings.ToLower(name) {
	case "", "table":
		return writeTable, nil
	case "json":
		return writeJSON, nil
	case "yaml", "yml":
		return writeYAML, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want table, json or yaml)", name)
}

func toListing(c reconcile.Collection) listing {
	l := listing{Count: c.Len(), TotalValue: c.TotalValue(), Products: make([]row, 0, c.Len())}
	for _, e := range c.Entities() {
		id, _ := identity.RemoteKey(e.RemoteID)
		l.Products = append(l.Products, row{UID: e.UID, ID: id, Name: e.Name, Price: e.Price})
	}
	return l
}

func writeTable(w io.Writer, c reconcile.Collection) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "UID\tNAME\tPRICE")
	for _, e := range c.Entities() {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\n", e.UID, e.Name, e.Price)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d products, total value %.2f\n", c.Len(), c.TotalValue())
	return err
}

func writeJSON(w io.Writer, c reconcile.Collection) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toListing(c))
}

func writeYAML(w io.Writer, c reconcile.Collection) error {
	b, err := yaml.Marshal(toListing(c))
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
