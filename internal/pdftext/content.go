package pdftext

import (
	"bytes"
	"encoding/hex"
	"strconv"
	"strings"
)

// TextFromContentStream pulls the strings shown by Tj, TJ, ' and " out of a
// decoded page content stream. Text objects and line moves become newlines.
// Font encodings are not applied, so only simple-encoded text is readable.
func TextFromContentStream(stream []byte) string {
	var (
		out      strings.Builder
		operands []string
		array    []string
		inArray  bool
		lastNum  string
	)

	emit := func(s string) {
		out.WriteString(s)
	}
	newline := func() {
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteByte('\n')
		}
	}

	for i := 0; i < len(stream); {
		c := stream[i]
		switch {
		case c == '(':
			s, n := literalString(stream[i:])
			i += n
			if inArray {
				array = append(array, s)
			} else {
				operands = append(operands, s)
			}
		case c == '<' && i+1 < len(stream) && stream[i+1] == '<':
			i += 2
		case c == '>' && i+1 < len(stream) && stream[i+1] == '>':
			i += 2
		case c == '<':
			end := bytes.IndexByte(stream[i+1:], '>')
			if end < 0 {
				return out.String()
			}
			s := hexString(stream[i+1 : i+1+end])
			i += end + 2
			if inArray {
				array = append(array, s)
			} else {
				operands = append(operands, s)
			}
		case c == '[':
			inArray, array = true, array[:0]
			i++
		case c == ']':
			inArray = false
			i++
		case c == '%':
			for i < len(stream) && stream[i] != '\n' && stream[i] != '\r' {
				i++
			}
		case isSpace(c):
			i++
		default:
			j := i
			for j < len(stream) && !isSpace(stream[j]) && !isDelimiter(stream[j]) {
				j++
			}
			if j == i {
				i++
				continue
			}
			tok := string(stream[i:j])
			i = j

			if inArray {
				// Large negative kerning inside TJ is a word gap.
				if v, err := strconv.ParseFloat(tok, 64); err == nil && v < -200 {
					array = append(array, " ")
				}
				continue
			}

			switch tok {
			case "Tj":
				if len(operands) > 0 {
					emit(operands[len(operands)-1])
				}
			case "'", "\"":
				newline()
				if len(operands) > 0 {
					emit(operands[len(operands)-1])
				}
			case "TJ":
				emit(strings.Join(array, ""))
				array = array[:0]
			case "T*", "ET":
				newline()
			case "Td", "TD":
				if lastNum != "" && lastNum != "0" {
					newline()
				}
			}
			if _, err := strconv.ParseFloat(tok, 64); err == nil {
				lastNum = tok
				continue
			}
			operands = operands[:0]
			lastNum = ""
		}
	}
	return out.String()
}

// literalString decodes a (...) string starting at b[0] and returns it with
// the number of bytes consumed.
func literalString(b []byte) (string, int) {
	var s strings.Builder
	depth := 0
	i := 0
	for i < len(b) {
		c := b[i]
		switch c {
		case '(':
			if depth > 0 {
				s.WriteByte(c)
			}
			depth++
			i++
		case ')':
			depth--
			i++
			if depth == 0 {
				return s.String(), i
			}
			s.WriteByte(c)
		case '\\':
			if i+1 >= len(b) {
				return s.String(), len(b)
			}
			i++
			e := b[i]
			switch e {
			case 'n':
				s.WriteByte('\n')
			case 'r':
				s.WriteByte('\r')
			case 't':
				s.WriteByte('\t')
			case 'b', 'f':
			case '\n':
			case '\r':
				if i+1 < len(b) && b[i+1] == '\n' {
					i++
				}
			case '0', '1', '2', '3', '4', '5', '6', '7':
				j := i
				for j < len(b) && j < i+3 && b[j] >= '0' && b[j] <= '7' {
					j++
				}
				v, _ := strconv.ParseUint(string(b[i:j]), 8, 8)
				s.WriteByte(byte(v))
				i = j - 1
			default:
				s.WriteByte(e)
			}
			i++
		default:
			s.WriteByte(c)
			i++
		}
	}
	return s.String(), len(b)
}

func hexString(b []byte) string {
	var clean []byte
	for _, c := range b {
		if !isSpace(c) {
			clean = append(clean, c)
		}
	}
	if len(clean)%2 == 1 {
		clean = append(clean, '0')
	}
	out, err := hex.DecodeString(string(clean))
	if err != nil {
		return ""
	}
	return string(out)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
