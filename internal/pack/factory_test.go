package pack

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cases := []struct {
		name string
		src  Source
		want Driver
	}{
		{"default fs", Source{Root: dir}, DriverFilesystem},
		{"explicit fs", Source{Driver: DriverFilesystem, Root: dir}, DriverFilesystem},
		{"memory", Source{Driver: DriverMemory}, DriverMemory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Open(ctx, tc.src)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if s.Driver() != tc.want {
				t.Fatalf("driver = %s, want %s", s.Driver(), tc.want)
			}
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Source{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestOpenAllNamesFailingSource(t *testing.T) {
	_, err := OpenAll(context.Background(), []Source{
		{Driver: DriverMemory},
		{Name: "broken", Driver: DriverFilesystem, Root: "/definitely/not/here"},
	})
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("expected error naming source, got %v", err)
	}
	_, err = OpenAll(context.Background(), []Source{{Driver: "bogus"}})
	if err == nil || !strings.Contains(err.Error(), "#0") {
		t.Fatalf("expected positional name, got %v", err)
	}
}

func TestMemorySourceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Source{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Put(ctx, "pack.mcmeta", bytes.NewReader([]byte("{}")), PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Head(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
