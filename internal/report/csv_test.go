package report

import (
	"testing"
	"time"
)

func TestRenderCSVQuotesEveryField(t *testing.T) {
	got := RenderCSV([]string{"Position", "Client"}, [][]string{{"A", "B"}})
	want := "Position,Client\n\"A\",\"B\""
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderCSVEscapesQuotes(t *testing.T) {
	got := RenderCSV([]string{"Name"}, [][]string{{`Acme "Global"`}})
	want := "Name\n\"Acme \"\"Global\"\"\""
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderCSVEmptyRows(t *testing.T) {
	got := RenderCSV([]string{"Position", "Client"}, nil)
	if got != "Position,Client" {
		t.Fatalf("got %q", got)
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)
	if got := Filename("placements", at); got != "placements_2026-08-31.csv" {
		t.Fatalf("got %q", got)
	}
}
