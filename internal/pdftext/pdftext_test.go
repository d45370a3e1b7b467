package pdftext

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/amishk599/hirecall/internal/model"
)

func TestTextFromContentStream(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name:   "Tj and line move",
			stream: "BT /F1 12 Tf 72 712 Td (Jane Doe) Tj 0 -14 Td (Go Engineer) Tj ET",
			want:   "Jane Doe\nGo Engineer\n",
		},
		{
			name:   "TJ with word gap",
			stream: "BT [(Senior) -300 (Dev) 20 (eloper)] TJ ET",
			want:   "Senior Developer\n",
		},
		{
			name:   "escapes and nesting",
			stream: `BT (a \(b\) \\ c) Tj (x (y) z) Tj ET`,
			want:   `a (b) \ cx (y) z` + "\n",
		},
		{
			name:   "octal escape",
			stream: `BT (caf\351) Tj ET`,
			want:   "caf\xe9\n",
		},
		{
			name:   "hex string",
			stream: "BT <48656C6C6F> Tj ET",
			want:   "Hello\n",
		},
		{
			name:   "quote operator starts a new line",
			stream: "BT (one) Tj (two) ' ET",
			want:   "one\ntwo\n",
		},
		{
			name:   "dictionaries and comments ignored",
			stream: "/P <</MCID 0>> BDC % comment (not text)\nBT (kept) Tj ET EMC",
			want:   "kept\n",
		},
		{
			name:   "horizontal move keeps the line",
			stream: "BT (left) Tj 120 0 Td (right) Tj ET",
			want:   "leftright\n",
		},
		{
			name:   "no text",
			stream: "q 1 0 0 1 0 0 cm Q",
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TextFromContentStream([]byte(tt.stream)); got != tt.want {
				t.Errorf("TextFromContentStream = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  hello \t  world  ", "hello world"},
		{"ﬁve ＡＢＣ", "five ABC"},
		{"a\r\nb\rc", "a\nb\nc"},
		{"one\n\n\n\n\ntwo", "one\n\ntwo"},
		{"x\x00y", "xy"},
		{" \n\t ", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtract_GarbageIsUnreadable(t *testing.T) {
	e := NewExtractor(slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, data := range [][]byte{nil, []byte("not a pdf at all"), []byte("%PDF-1.4\n%%EOF")} {
		_, err := e.Extract(data)
		if !errors.Is(err, model.ErrUnreadablePDF) {
			t.Errorf("Extract(%q) err = %v, want ErrUnreadablePDF", data, err)
		}
	}
}
