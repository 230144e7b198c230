package idgen

import (
	"context"
	"testing"

	"github.com/ceyewan/flake/clog"
)

func BenchmarkGeneratorNext(b *testing.B) {
	gen, err := New(1, WithLogger(clog.Discard()))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for b.Loop() {
		if _, err := gen.Next(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLockedNextParallel(b *testing.B) {
	gen, err := New(1, WithLogger(clog.Discard()))
	if err != nil {
		b.Fatal(err)
	}
	locked := NewLocked(gen)
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := locked.Next(); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

func BenchmarkWorkerNextParallel(b *testing.B) {
	gen, err := New(1, WithLogger(clog.Discard()))
	if err != nil {
		b.Fatal(err)
	}
	w := NewWorker(gen)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := w.Next(ctx); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
