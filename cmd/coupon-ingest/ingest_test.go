package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/coupon"
)

func def(code string) string {
	return `{"code":"` + code + `","discountType":"percentage","discountValue":"10","expiryDate":"2030-01-01T00:00:00Z"}`
}

func writeBatch(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	gz := pgzip.NewWriter(f)
	_, err = gz.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

var testConfig = ingestConfig{Capacity: 1000, FPRate: 0.0001, BatchSize: 2}

func TestPlan(t *testing.T) {
	dir := t.TempDir()
	writeBatch(t, dir, "a.jsonl.gz", def("SPRING"), def("shared"), def("ONLYA"))
	writeBatch(t, dir, "b.jsonl.gz", def("SHARED"), def("ONLYB"), def("ONLYB"))
	writeBatch(t, dir, "c.jsonl.gz", `{"code":`, def("ONLYC"), `{"code":"BAD","discountType":"percentage","discountValue":"0","expiryDate":"2030-01-01T00:00:00Z"}`)
	writeBatch(t, dir, "ignored.txt.gz", def("SPRING"))

	files, err := batchFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)

	r, err := plan(context.Background(), testConfig, files)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Files)
	assert.Equal(t, 9, r.Lines)
	assert.Equal(t, 2, r.Invalid)
	assert.Equal(t, []string{"SHARED"}, r.Duplicates)

	codes := make([]string, len(r.Coupons))
	for i, c := range r.Coupons {
		codes[i] = c.Code
	}
	assert.Equal(t, []string{"ONLYA", "ONLYB", "ONLYC", "SPRING"}, codes)
}

func TestPlan_MissingFile(t *testing.T) {
	_, err := plan(context.Background(), testConfig, []string{filepath.Join(t.TempDir(), "nope.jsonl.gz")})
	require.ErrorContains(t, err, "build filters")
}

type recordingWriter struct {
	batches [][]string
	failAt  int
}

func (w *recordingWriter) Upsert(_ context.Context, coupons []coupon.Coupon) error {
	if w.failAt > 0 && len(w.batches)+1 == w.failAt {
		return errors.New("db down")
	}
	var codes []string
	for _, c := range coupons {
		codes = append(codes, c.Code)
	}
	w.batches = append(w.batches, codes)
	return nil
}

func TestWriteCoupons(t *testing.T) {
	coupons := []coupon.Coupon{{Code: "A"}, {Code: "B"}, {Code: "C"}}

	w := &recordingWriter{}
	require.NoError(t, writeCoupons(context.Background(), w, coupons, 2))
	assert.Equal(t, [][]string{{"A", "B"}, {"C"}}, w.batches)

	w = &recordingWriter{}
	require.NoError(t, writeCoupons(context.Background(), w, coupons, 0))
	assert.Len(t, w.batches, 1)

	w = &recordingWriter{failAt: 2}
	err := writeCoupons(context.Background(), w, coupons, 2)
	require.ErrorContains(t, err, "upsert coupons 2-3")
}
