package engine

import (
	"context"
	"fmt"
	"testing"

	"routing/services/routing-svc/internal/loader"
)

// Размеры как в эталонных замерах: разреженный граф, ~10 рёбер на вершину
var benchSizes = []int{100, 500, 1000}

func benchEngine(b *testing.B, n int, opts ...Option) *Engine {
	b.Helper()
	g, err := loader.Random(loader.DefaultRandomSpec(n, n*10))
	if err != nil {
		b.Fatal(err)
	}
	e := NewFromGraph(g, opts...)
	b.Cleanup(func() { _ = e.Close() })
	return e
}

func BenchmarkEngine_Dijkstra(b *testing.B) {
	ctx := context.Background()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d/uncached", n), func(b *testing.B) {
			e := benchEngine(b, n)
			if err := e.EnableCaching(ctx, false); err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := e.Dijkstra(ctx, i%n); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run(fmt.Sprintf("n=%d/cached", n), func(b *testing.B) {
			e := benchEngine(b, n)
			if _, err := e.Dijkstra(ctx, 0); err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := e.Dijkstra(ctx, 0); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEngine_ShortestPath(b *testing.B) {
	ctx := context.Background()
	e := benchEngine(b, 1000)
	if err := e.EnableCaching(ctx, false); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := e.ShortestPath(ctx, i%1000, (i*7)%1000); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEngine_FloydWarshall(b *testing.B) {
	ctx := context.Background()
	for _, n := range []int{100, 300} {
		e := benchEngine(b, n)

		b.Run(fmt.Sprintf("n=%d/sequential", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := e.FloydWarshall(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})

		for _, workers := range []int{2, 4, 8} {
			b.Run(fmt.Sprintf("n=%d/parallel-%d", n, workers), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					if _, err := e.FloydWarshallParallel(ctx, workers); err != nil {
						b.Fatal(err)
					}
				}
			})
		}

		b.Run(fmt.Sprintf("n=%d/bitset", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := e.FloydWarshallBitset(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEngine_BellmanFord(b *testing.B) {
	ctx := context.Background()
	e := benchEngine(b, 500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.BellmanFord(ctx, i%500); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEngine_ConcurrentReaders(b *testing.B) {
	ctx := context.Background()
	e := benchEngine(b, 500)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if _, err := e.Distance(ctx, i%500, (i*13)%500); err != nil {
				b.Error(err)
				return
			}
			i++
		}
	})
}

func BenchmarkEngine_Profiled(b *testing.B) {
	ctx := context.Background()
	e := benchEngine(b, 500, WithAutoProfile(true))
	if err := e.EnableCaching(ctx, false); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Dijkstra(ctx, i%500); err != nil {
			b.Fatal(err)
		}
	}
}
