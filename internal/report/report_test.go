package report

import (
	"bytes"
	"testing"
)

func TestWriteAreasFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAreas(&buf, CredibleLevels, []float64{12.5, 40, 1234.0625}); err != nil {
		t.Fatalf("WriteAreas failed: %v", err)
	}
	want := "5.000000000000000000e-01 1.250000000000000000e+01\n" +
		"7.500000000000000000e-01 4.000000000000000000e+01\n" +
		"9.000000000000000222e-01 1.234062500000000000e+03\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteAreasLengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAreas(&buf, CredibleLevels, []float64{1}); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestWritePValues(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePValues(&buf, []float64{0.25}); err != nil {
		t.Fatalf("WritePValues failed: %v", err)
	}
	if got := buf.String(); got != "2.500000000000000000e-01\n" {
		t.Fatalf("unexpected output %q", got)
	}
}
