package module

import (
	"sync"
	"testing"
)

type portSet struct {
	Name string
	ID   int
}

func TestRegistry_RegisterAndPortsAs(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	want := portSet{Name: "crawl", ID: 1}
	Register("crawl", want)

	got, ok := PortsAs[portSet]("crawl")
	if !ok || got != want {
		t.Fatalf("PortsAs = %v, %v", got, ok)
	}
}

func TestRegistry_MissingAndMismatch(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if got, ok := PortsAs[portSet]("missing"); ok || got != (portSet{}) {
		t.Fatalf("missing name should give zero,false; got %v,%v", got, ok)
	}
	Register("crawl", 42)
	if _, ok := PortsAs[portSet]("crawl"); ok {
		t.Fatal("type mismatch should give ok=false")
	}
}

func TestRegistry_OverwriteAndNames(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("probe", portSet{ID: 1})
	Register("crawl", portSet{ID: 1})
	Register("crawl", portSet{ID: 2})

	got, _ := PortsAs[portSet]("crawl")
	if got.ID != 2 {
		t.Fatalf("overwrite lost: %v", got)
	}
	names := Names()
	if len(names) != 2 || names[0] != "crawl" || names[1] != "probe" {
		t.Fatalf("Names = %v", names)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Register("crawl", portSet{ID: i})
			_, _ = PortsAs[portSet]("crawl")
		}(i)
	}
	wg.Wait()
	if _, ok := PortsAs[portSet]("crawl"); !ok {
		t.Fatal("expected crawl to be registered")
	}
}
