package memsource

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/discochess/assetcache/internal/source"
)

func TestSource_ReadFile(t *testing.T) {
	s := New()
	data := []byte("abc")
	s.SetFile("a.bif", data)
	data[0] = 'X'

	got, err := s.ReadFile(context.Background(), "a.bif")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("ReadFile() = %q, want %q", got, "abc")
	}

	got[1] = 'Y'
	again, _ := s.ReadFile(context.Background(), "a.bif")
	if string(again) != "abc" {
		t.Errorf("ReadFile() after caller mutation = %q, want %q", again, "abc")
	}
	if n := s.Reads("a.bif"); n != 2 {
		t.Errorf("Reads() = %d, want 2", n)
	}
}

func TestSource_Errors(t *testing.T) {
	s := New()
	if _, err := s.ReadFile(context.Background(), "missing"); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("ReadFile() error = %v, want ErrNotFound", err)
	}

	boom := errors.New("card removed")
	s.SetFile("a", []byte("x"))
	s.FailWith(boom)
	if _, err := s.ReadFile(context.Background(), "a"); !errors.Is(err, boom) {
		t.Errorf("ReadFile() error = %v, want %v", err, boom)
	}
	s.FailWith(nil)
	if _, err := s.ReadFile(context.Background(), "a"); err != nil {
		t.Errorf("ReadFile() after FailWith(nil) error = %v", err)
	}
}

func TestSource_Names(t *testing.T) {
	s := New()
	s.SetFile("b", nil)
	s.SetFile("a", nil)
	if got, want := s.Names(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
