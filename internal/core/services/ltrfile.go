package services

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

const docIDPrefix = "docid="

// FormatFeatureRow renders one row as
// "<label> qid:<qid> 1:<v1> ... 26:<v26> #docid=<docid>".
func FormatFeatureRow(row domain.FeatureRow) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(row.Label))
	b.WriteString(" qid:")
	b.WriteString(row.QID)
	for i, v := range row.Features {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteString(" #")
	b.WriteString(docIDPrefix)
	b.WriteString(row.DocID)
	return b.String()
}

// WriteFeatureFile writes rows one per line. It returns the number of rows
// that reached w in full, which on error may be fewer than were formatted.
func WriteFeatureFile(w io.Writer, rows []domain.FeatureRow) (int, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	ends := make([]int64, 0, len(rows))
	var end int64
	for i, row := range rows {
		line := FormatFeatureRow(row) + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return completeRows(ends, cw.n), fmt.Errorf("write feature row %d: %w", i, err)
		}
		end += int64(len(line))
		ends = append(ends, end)
	}
	if err := bw.Flush(); err != nil {
		return completeRows(ends, cw.n), fmt.Errorf("flush feature file: %w", err)
	}
	return len(rows), nil
}

// completeRows counts the rows whose last byte lies within the first written bytes.
func completeRows(ends []int64, written int64) int {
	return sort.Search(len(ends), func(i int) bool { return ends[i] > written })
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// RankedEntry is one line of ranker output.
type RankedEntry struct {
	QID   string
	DocID string
}

// ReadTopK returns, in file order, the first k document IDs ranked for qid.
// Both indri lines ("qid Q0 docid rank score run") and feature rows carrying
// "#docid=" are accepted.
func ReadTopK(r io.Reader, qid string, k int) ([]string, error) {
	top := []string{}
	if k <= 0 {
		return top, nil
	}
	err := scanRanked(r, func(e RankedEntry) bool {
		if e.QID == qid {
			top = append(top, e.DocID)
		}
		return len(top) < k
	})
	return top, err
}

// ReadRanked groups the ranker output by qid, keeping at most k document IDs
// per qid in file order. k <= 0 keeps all.
func ReadRanked(r io.Reader, k int) (map[string][]string, error) {
	ranked := make(map[string][]string)
	err := scanRanked(r, func(e RankedEntry) bool {
		if k <= 0 || len(ranked[e.QID]) < k {
			ranked[e.QID] = append(ranked[e.QID], e.DocID)
		}
		return true
	})
	return ranked, err
}

// scanRanked calls fn per parsed line until fn returns false or input ends.
func scanRanked(r io.Reader, fn func(RankedEntry) bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		entry, err := parseRankedLine(text)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if !fn(entry) {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read ranker output: %w", err)
	}
	return nil
}

func parseRankedLine(text string) (RankedEntry, error) {
	if body, comment, ok := strings.Cut(text, "#"); ok {
		comment = strings.TrimSpace(comment)
		for _, f := range strings.Fields(body) {
			if qid, isQID := strings.CutPrefix(f, "qid:"); isQID {
				docID, hasDocID := strings.CutPrefix(comment, docIDPrefix)
				if !hasDocID || docID == "" {
					return RankedEntry{}, fmt.Errorf("%w: feature row without docid", domain.ErrMalformedRankerOutput)
				}
				return RankedEntry{QID: qid, DocID: strings.Fields(docID)[0]}, nil
			}
		}
	}

	fields := strings.Fields(text)
	if len(fields) < 3 {
		return RankedEntry{}, fmt.Errorf("%w: %q", domain.ErrMalformedRankerOutput, text)
	}
	docID := strings.TrimPrefix(strings.TrimPrefix(fields[2], "#"), docIDPrefix)
	if docID == "" {
		return RankedEntry{}, fmt.Errorf("%w: empty document id", domain.ErrMalformedRankerOutput)
	}
	return RankedEntry{QID: fields[0], DocID: docID}, nil
}
