package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectRecordLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"resdb"},
			want: []string{"resdb"},
		},
		{
			name: "locator first token",
			in:   []string{"resdb", "resrec:///U-a/R-1"},
			want: []string{"resdb", "records", "get", "resrec:///U-a/R-1"},
		},
		{
			name: "locator after value flag",
			in:   []string{"resdb", "--dir", "./tmp", "resrec:///U-a/R-1"},
			want: []string{"resdb", "--dir", "./tmp", "records", "get", "resrec:///U-a/R-1"},
		},
		{
			name: "locator after equals flag",
			in:   []string{"resdb", "--user=U-a", "resrec:///U-a/R-1"},
			want: []string{"resdb", "--user=U-a", "records", "get", "resrec:///U-a/R-1"},
		},
		{
			name: "locator after bool flag",
			in:   []string{"resdb", "--pretty", "resrec:///U-a/R-1"},
			want: []string{"resdb", "--pretty", "records", "get", "resrec:///U-a/R-1"},
		},
		{
			name: "locator after double dash",
			in:   []string{"resdb", "--", "resrec:///U-a/R-1"},
			want: []string{"resdb", "--", "records", "get", "resrec:///U-a/R-1"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"resdb", "records", "get", "resrec:///U-a/R-1"},
			want: []string{"resdb", "records", "get", "resrec:///U-a/R-1"},
		},
		{
			name: "bare scheme not rewritten",
			in:   []string{"resdb", "resrec:///"},
			want: []string{"resdb", "resrec:///"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rewriteDirectRecordLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
