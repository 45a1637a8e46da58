package testkit

import (
	"strings"
	"testing"

	"quill/internal/document"
	"quill/internal/ir"
	"quill/internal/source"
)

func TestCheckIRInvariants(t *testing.T) {
	files := source.NewFileSet()
	id := files.AddVirtual("/Index.quill", []byte("<p>hi</p>"))

	build := func(mutate func(*ir.Document)) *document.CodeDocument {
		doc := document.New(files.Get(id))
		root := &ir.Document{}
		ns := &ir.Namespace{IsPrimary: true}
		cls := &ir.Class{IsPrimary: true}
		m := &ir.Method{IsPrimary: true}
		html := &ir.HTMLContent{}
		html.SetSource(source.Span{File: id, Start: 0, End: 9})
		m.Add(html)
		cls.Add(m)
		ns.Add(cls)
		root.Add(ns)
		if mutate != nil {
			mutate(root)
		}
		doc.SetIR(root)
		return doc
	}

	tests := []struct {
		name   string
		mutate func(*ir.Document)
		want   string
	}{
		{"valid", nil, ""},
		{"nil child", func(d *ir.Document) { d.Add(nil) }, "child 1 is nil"},
		{"beyond content", func(d *ir.Document) {
			d.SetSource(source.Span{File: id, Start: 2, End: 40})
		}, "beyond content"},
		{"unknown file", func(d *ir.Document) {
			d.SetSource(source.Span{File: 7})
		}, "unknown file"},
		{"two primary classes", func(d *ir.Document) {
			d.Add(&ir.Class{IsPrimary: true})
		}, "2 primary class"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckIRInvariants(build(tt.mutate), files)
			switch {
			case tt.want == "" && err != nil:
				t.Fatalf("unexpected error: %v", err)
			case tt.want != "" && (err == nil || !strings.Contains(err.Error(), tt.want)):
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}

	if err := CheckIRInvariants(document.New(files.Get(id)), files); err == nil {
		t.Fatal("document without IR accepted")
	}
}
