// Package injection reads simulated-signal tables written in the LIGO
// Light-Weight XML format and exposes their sim_inspiral rows.
package injection

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"skyarea/internal/services"
)

const simInspiralTable = "sim_inspiral"

// Record is one simulated signal.
type Record struct {
	SimulationID string
	Longitude    float64
	Latitude     float64
	Distance     float64
	Inclination  float64
	Mass1        float64
	Mass2        float64
	// GeocentEndTime is the geocentric end time in GPS seconds.
	GeocentEndTime float64
}

// Table is an ordered list of injections.
type Table []Record

type ligoLW struct {
	Tables []xmlTable `xml:"Table"`
}

type xmlTable struct {
	Name    string      `xml:"Name,attr"`
	Columns []xmlColumn `xml:"Column"`
	Stream  xmlStream   `xml:"Stream"`
}

type xmlColumn struct {
	Name string `xml:"Name,attr"`
	Type string `xml:"Type,attr"`
}

type xmlStream struct {
	Delimiter string `xml:"Delimiter,attr"`
	Body      string `xml:",chardata"`
}

// Load reads the sim_inspiral table from path. Gzip-compressed files are
// detected by their magic number.
func Load(path string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "injection", "open", path, err)
	}
	defer file.Close()

	br := bufio.NewReader(file)
	var r io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, services.Wrap(services.ErrParse, "injection", "gunzip", path, err)
		}
		defer gz.Close()
		r = gz
	}

	table, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Read parses a LIGO_LW document and returns its sim_inspiral rows.
func Read(r io.Reader) (Table, error) {
	var doc ligoLW
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, services.Wrap(services.ErrParse, "injection", "decode xml", "", err)
	}
	for _, table := range doc.Tables {
		if stripTableName(table.Name) != simInspiralTable {
			continue
		}
		return parseTable(table)
	}
	return nil, services.Wrap(services.ErrNotFound, "injection", "find table", "document has no sim_inspiral table", nil)
}

// Select returns the record at index.
func (t Table) Select(index int) (Record, error) {
	if index < 0 || index >= len(t) {
		return Record{}, services.Wrap(services.ErrValidation, "injection", "select",
			fmt.Sprintf("event %d out of range (table has %d rows)", index, len(t)), nil)
	}
	return t[index], nil
}

func parseTable(table xmlTable) (Table, error) {
	columns := make([]string, len(table.Columns))
	index := map[string]int{}
	for i, col := range table.Columns {
		columns[i] = stripColumnName(col.Name)
		index[columns[i]] = i
	}
	for _, required := range []string{"longitude", "latitude"} {
		if _, ok := index[required]; !ok {
			return nil, services.Wrap(services.ErrParse, "injection", "columns", fmt.Sprintf("sim_inspiral has no %s column", required), nil)
		}
	}

	delimiter := table.Stream.Delimiter
	if delimiter == "" {
		delimiter = ","
	}
	tokens := tokenize(table.Stream.Body, delimiter[0])
	if len(tokens) > 0 && tokens[len(tokens)-1] == "" && len(tokens)%len(columns) == 1 {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens)%len(columns) != 0 {
		return nil, services.Wrap(services.ErrParse, "injection", "stream",
			fmt.Sprintf("%d values do not fill rows of %d columns", len(tokens), len(columns)), nil)
	}

	rows := len(tokens) / len(columns)
	out := make(Table, 0, rows)
	for r := 0; r < rows; r++ {
		row := tokens[r*len(columns) : (r+1)*len(columns)]
		rec, err := buildRecord(row, index)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func buildRecord(row []string, index map[string]int) (Record, error) {
	var rec Record
	var err error
	float := func(name string, required bool) float64 {
		i, ok := index[name]
		if !ok || err != nil {
			return 0
		}
		if row[i] == "" {
			if required {
				err = services.Wrap(services.ErrParse, "injection", name, "value is null", nil)
			}
			return 0
		}
		v, parseErr := strconv.ParseFloat(row[i], 64)
		if parseErr != nil {
			err = services.Wrap(services.ErrParse, "injection", name, fmt.Sprintf("value %q", row[i]), parseErr)
		}
		return v
	}

	rec.Longitude = float("longitude", true)
	rec.Latitude = float("latitude", true)
	rec.Distance = float("distance", false)
	rec.Inclination = float("inclination", false)
	rec.Mass1 = float("mass1", false)
	rec.Mass2 = float("mass2", false)
	rec.GeocentEndTime = float("geocent_end_time", false) + 1e-9*float("geocent_end_time_ns", false)
	if i, ok := index["simulation_id"]; ok {
		rec.SimulationID = row[i]
	}
	return rec, err
}

// tokenize splits a LIGO_LW stream on delimiter, honouring double-quoted
// strings and backslash escapes. Tokens are trimmed and unquoted.
func tokenize(body string, delimiter byte) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	seen := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && inQuotes && i+1 < len(body):
			i++
			current.WriteByte(body[i])
		case c == '"':
			inQuotes = !inQuotes
			seen = true
		case c == delimiter && !inQuotes:
			tokens = append(tokens, strings.TrimSpace(current.String()))
			current.Reset()
			seen = false
		default:
			if !inQuotes && (c == ' ' || c == '\t' || c == '\n' || c == '\r') {
				continue
			}
			current.WriteByte(c)
			seen = true
		}
	}
	if seen || current.Len() > 0 {
		tokens = append(tokens, strings.TrimSpace(current.String()))
	} else if len(tokens) > 0 {
		tokens = append(tokens, "")
	}
	return tokens
}

func stripTableName(name string) string {
	name = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ":table")
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func stripColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
