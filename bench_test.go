package transpose_test

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/reoring/transpose"
)

type benchItem struct {
	ID     string  `json:"id" check:"minLen=1"`
	Name   string  `json:"name"`
	Age    int     `json:"age" check:"gte=0"`
	Active bool    `json:"active"`
	Score  float64 `json:"score"`
}

type benchBatch struct {
	Items []benchItem `json:"items"`
}

func smallUserJSON() []byte {
	return []byte(`{"id":"u_1","name":"alice","age":3,"active":true,"score":0.5}`)
}

// generateBatchJSON returns {"items":[{"id":"obj_0","name":"n0",...}, ...]}.
func generateBatchJSON(n int) []byte {
	var buf bytes.Buffer
	buf.Grow(n * 72)
	buf.WriteString(`{"items":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		s := strconv.Itoa(i)
		buf.WriteString(`{"id":"obj_` + s + `","name":"n` + s + `","age":` + s + `,"active":true,"score":` + s + `.5}`)
	}
	buf.WriteString(`]}`)
	return buf.Bytes()
}

func BenchmarkTranspose_Small(b *testing.B) {
	tp := transpose.New()
	data := smallUserJSON()
	ctx := context.Background()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := transpose.Transpose[benchItem](ctx, tp, transpose.JSONBytes(data)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTranspose_Batch(b *testing.B) {
	for _, n := range []int{100, 10000} {
		n := n
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			tp := transpose.New()
			data := generateBatchJSON(n)
			ctx := context.Background()
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := transpose.Transpose[benchBatch](ctx, tp, transpose.JSONBytes(data)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkValidate_Value(b *testing.B) {
	tp := transpose.New()
	c, err := transpose.DeriveOf[benchItem](tp)
	if err != nil {
		b.Fatal(err)
	}
	in := map[string]any{"id": "u_1", "name": "alice", "age": 3, "active": true, "score": 0.5}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r, err := tp.Validate(c, in)
		if err != nil || !r.Valid() {
			b.Fatal(err, r.Errors())
		}
	}
}
