package db

import (
	"testing"

	"github.com/eups-go/eups/version"
)

func TestTagsListsEveryChainFile(t *testing.T) {
	s := Stack{Root: t.TempDir()}

	if err := s.Tag("", "afw", "current", version.Version("11.0"), "Linux64", "bob"); err != nil {
		t.Fatal(err)
	}
	if err := s.Tag("", "afw", "stable", version.Version("10.0"), "Linux64", "bob"); err != nil {
		t.Fatal(err)
	}

	tags, err := s.Tags("afw")
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tag pointers, got %d: %+v", len(tags), tags)
	}
	if tags[0].Tag != "current" || tags[1].Tag != "stable" {
		t.Errorf("expected tags sorted by name, got %+v", tags)
	}
}

func TestTagsOnUndeclaredProductIsEmpty(t *testing.T) {
	s := Stack{Root: t.TempDir()}

	tags, err := s.Tags("nope")
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 0 {
		t.Errorf("expected no tags, got %+v", tags)
	}
}
