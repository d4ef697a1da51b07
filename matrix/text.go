package matrix

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phylotools/arbornj/errs"
	"github.com/phylotools/arbornj/internal/pool"
)

// WriteText renders the matrix in the phylip-style text format:
// a header line with a tab and the sequence count, then one line per
// sequence holding its name, a tab, and the row's values fixed to six
// decimal places and separated by single spaces (with a trailing space,
// matching the historical output byte-for-byte).
//
// Rows are read sequentially through the Store contract, so the disk
// variant streams without random access.
func WriteText(w io.Writer, names []string, s Store) error {
	n := s.Len()
	if len(names) != n {
		return fmt.Errorf("%w: %d names for %d rows", errs.ErrSequenceCountMismatch, len(names), n)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\t%d\n", n)

	row, cleanup := pool.GetFloat64Slice(n)
	defer cleanup()

	for i := 0; i < n; i++ {
		if err := s.ReadRow(i, row); err != nil {
			return err
		}
		bw.WriteString(names[i])
		bw.WriteByte('\t')
		for j := 0; j < n; j++ {
			bw.WriteString(strconv.FormatFloat(row[j], 'f', 6, 64))
			bw.WriteByte(' ')
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// ReadText parses the text matrix format produced by WriteText.
//
// Returns the sequence names and the full n x n matrix. Any structural
// problem (bad header, short row, non-numeric value, wrong row count) is an
// InputError.
func ReadText(r io.Reader) ([]string, [][]float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	if !scanner.Scan() {
		return nil, nil, fmt.Errorf("%w: missing header line", errs.ErrMalformedMatrix)
	}
	header := strings.TrimSpace(scanner.Text())
	n, err := strconv.Atoi(header)
	if err != nil || n <= 0 {
		return nil, nil, fmt.Errorf("%w: bad header %q", errs.ErrMalformedMatrix, scanner.Text())
	}

	names := make([]string, 0, n)
	rows := make([][]float64, 0, n)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(rows) == n {
			return nil, nil, fmt.Errorf("%w: more than %d rows", errs.ErrMalformedMatrix, n)
		}

		name, rest, found := strings.Cut(line, "\t")
		if !found {
			// Fall back to whitespace separation for hand-written matrices.
			fields := strings.Fields(line)
			if len(fields) < 1 {
				return nil, nil, fmt.Errorf("%w: row %d has no name", errs.ErrMalformedMatrix, len(rows))
			}
			name, rest = fields[0], strings.Join(fields[1:], " ")
		}

		values := strings.Fields(rest)
		if len(values) != n {
			return nil, nil, fmt.Errorf("%w: row %q has %d values, want %d",
				errs.ErrMalformedMatrix, name, len(values), n)
		}

		row := make([]float64, n)
		for j, v := range values {
			row[j], err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: row %q value %q", errs.ErrMalformedMatrix, name, v)
			}
		}

		names = append(names, name)
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errs.ErrMalformedMatrix, err)
	}
	if len(rows) != n {
		return nil, nil, fmt.Errorf("%w: found %d rows, header declares %d", errs.ErrMalformedMatrix, len(rows), n)
	}

	return names, rows, nil
}
