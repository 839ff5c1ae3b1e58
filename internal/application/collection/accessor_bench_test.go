package collection_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/YouSangSon/academy-backoffice/internal/application/collection"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/persistence/memory"
)

func seeded(b *testing.B, n int) (*collection.Accessor, []string) {
	b.Helper()
	acc := collection.New(memory.NewDocumentStore(), entity.FAQCollection)
	ids := make([]string, n)
	for i := range ids {
		rec, err := acc.Create(context.Background(), entity.Fields{"question": fmt.Sprintf("q%d", i), "order": i})
		if err != nil {
			b.Fatal(err)
		}
		ids[i] = rec.ID()
	}
	return acc, ids
}

func BenchmarkCreate(b *testing.B) {
	acc := collection.New(memory.NewDocumentStore(), entity.FAQCollection)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := acc.Create(ctx, entity.Fields{"question": "Benchmark", "order": i}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGetByID(b *testing.B) {
	acc, ids := seeded(b, 100)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := acc.GetByID(ctx, ids[i%len(ids)]); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGetAllFiltered(b *testing.B) {
	acc, _ := seeded(b, 100)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := acc.GetAll(ctx, entity.Where("order", entity.OpGte, 50)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBatchUpdate(b *testing.B) {
	acc, ids := seeded(b, 20)
	ctx := context.Background()
	entries := make([]entity.BatchEntry, len(ids))
	for i, id := range ids {
		entries[i] = entity.BatchEntry{ID: id, Fields: entity.Fields{entity.FieldIsCurrentClass: false}}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := acc.BatchUpdate(ctx, entries); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkConcurrentReads(b *testing.B) {
	acc, ids := seeded(b, 100)
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if _, err := acc.GetByID(ctx, ids[i%len(ids)]); err != nil {
				b.Error(err)
				return
			}
			i++
		}
	})
}
