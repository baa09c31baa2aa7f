package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// movementRow fila del CSV: sku,kind,quantity,document,notes.
type movementRow struct {
	Line     int
	SKU      string
	Kind     entity.MovementKind
	Quantity decimal.Decimal
	Document string
	Notes    string
}

var expectedHeader = []string{"sku", "kind", "quantity", "document", "notes"}

// readRows parsea el CSV completo. Con latin1 decodifica ISO-8859-1 (exportes de hojas de cálculo).
func readRows(r io.Reader, latin1 bool, comma rune) ([]movementRow, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("archivo vacío")
		}
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var rows []movementRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if isBlank(rec) {
			continue
		}
		row, err := parseRow(line, rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func checkHeader(header []string) error {
	if len(header) < 3 {
		return fmt.Errorf("encabezado inválido: se esperan %s", strings.Join(expectedHeader, ","))
	}
	for i, h := range header {
		if i >= len(expectedHeader) {
			break
		}
		h = strings.TrimPrefix(h, "\ufeff")
		if !strings.EqualFold(strings.TrimSpace(h), expectedHeader[i]) {
			return fmt.Errorf("encabezado inválido: columna %d es %q, se esperaba %q", i+1, h, expectedHeader[i])
		}
	}
	return nil
}

func parseRow(line int, rec []string) (movementRow, error) {
	if len(rec) < 3 {
		return movementRow{}, fmt.Errorf("línea %d: se requieren al menos sku, kind y quantity", line)
	}
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	sku := field(0)
	if sku == "" {
		return movementRow{}, fmt.Errorf("línea %d: sku vacío", line)
	}
	kind := entity.MovementKind(strings.ToUpper(field(1)))
	if !kind.Valid() {
		return movementRow{}, fmt.Errorf("línea %d: tipo de movimiento %q inválido", line, field(1))
	}
	// Acepta coma decimal ("12,5").
	qty, err := decimal.NewFromString(strings.Replace(field(2), ",", ".", 1))
	if err != nil {
		return movementRow{}, fmt.Errorf("línea %d: cantidad %q inválida", line, field(2))
	}
	return movementRow{
		Line:     line,
		SKU:      sku,
		Kind:     kind,
		Quantity: qty,
		Document: field(3),
		Notes:    field(4),
	}, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// chunk parte las filas en lotes de tamaño max.
func chunk(rows []movementRow, max int) [][]movementRow {
	if max <= 0 {
		max = len(rows)
	}
	var out [][]movementRow
	for len(rows) > 0 {
		n := max
		if n > len(rows) {
			n = len(rows)
		}
		out = append(out, rows[:n])
		rows = rows[n:]
	}
	return out
}
