package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	DefaultPlayerColumn = "Player"
	DefaultTeamColumn   = "Squad"
	DefaultEncoding     = "latin1"
)

// ReadOptions controls how a roster file is decoded.
type ReadOptions struct {
	Encoding     string // latin1, windows-1252 or utf8
	PlayerColumn string
	TeamColumn   string
}

func (o ReadOptions) withDefaults() ReadOptions {
	if o.Encoding == "" {
		o.Encoding = DefaultEncoding
	}
	if o.PlayerColumn == "" {
		o.PlayerColumn = DefaultPlayerColumn
	}
	if o.TeamColumn == "" {
		o.TeamColumn = DefaultTeamColumn
	}
	return o
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

// FormatError reports a roster source that cannot be used: a missing column,
// an unsupported encoding, or a malformed record. Line is 0 when the problem
// is not tied to a record.
type FormatError struct {
	Line int
	Msg  string
	Err  error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString("roster")
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FormatError) Unwrap() error { return e.Err }

// --------------------------------------------------------------------------
// Reading
// --------------------------------------------------------------------------

// ReadFile opens path and reads every roster row from it.
func ReadFile(path string, opts ReadOptions) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FormatError{Msg: "open " + path, Err: err}
	}
	defer f.Close()
	return Read(f, opts)
}

// Read decodes a delimited roster with a header line. Only the player and
// team columns are used; other columns are ignored.
func Read(r io.Reader, opts ReadOptions) ([]Row, error) {
	opts = opts.withDefaults()

	enc, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(enc.NewDecoder().Reader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &FormatError{Msg: "empty input"}
	}
	if err != nil {
		return nil, &FormatError{Line: 1, Msg: "read header", Err: err}
	}

	playerCol := columnIndex(header, opts.PlayerColumn)
	teamCol := columnIndex(header, opts.TeamColumn)
	if playerCol < 0 {
		return nil, &FormatError{Line: 1, Msg: fmt.Sprintf("missing column %q", opts.PlayerColumn)}
	}
	if teamCol < 0 {
		return nil, &FormatError{Line: 1, Msg: fmt.Sprintf("missing column %q", opts.TeamColumn)}
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			line := 0
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, &FormatError{Line: line, Msg: "read record", Err: err}
		}
		line, _ := cr.FieldPos(0)
		if playerCol >= len(rec) || teamCol >= len(rec) {
			return nil, &FormatError{Line: line, Msg: fmt.Sprintf("expected at least %d fields, got %d", max(playerCol, teamCol)+1, len(rec))}
		}
		player := strings.TrimSpace(rec[playerCol])
		team := strings.TrimSpace(rec[teamCol])
		if player == "" || team == "" {
			return nil, &FormatError{Line: line, Msg: "empty player or team"}
		}
		rows = append(rows, Row{Player: player, Team: team})
	}
	return rows, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "utf8", "utf-8":
		return unicode.UTF8, nil
	default:
		return nil, &FormatError{Msg: fmt.Sprintf("unsupported encoding %q", name)}
	}
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		// Excel exports often carry a BOM on the first header cell.
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}
