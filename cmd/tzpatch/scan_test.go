package main

import (
	"path/filepath"
	"testing"
)

func TestScanCommand(t *testing.T) {
	root := testInstall(t)
	exe := filepath.Join(root, "bin", "trainz.exe")

	tests := []struct {
		name        string
		signature   string
		mask        string
		json        bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "exact",
			signature:   "C2 08 00 6A 08",
			wantContain: []string{"0x00000032", "[C2 08 00 6A 08]", "1 match"},
		},
		{
			name:        "wildcard",
			signature:   "C2 ?? 00",
			wantContain: []string{"0x00000032"},
		},
		{
			name:        "not unique",
			signature:   "CC CC",
			wantContain: []string{"signature is not unique"},
		},
		{
			name:      "absent",
			signature: "DE AD BE EF",
			wantErr:   true,
		},
		{
			name:      "bad mask",
			signature: "C2 08",
			mask:      "FF",
			wantErr:   true,
		},
		{
			name:        "json",
			signature:   "6A 08",
			json:        true,
			wantContain: []string{`"offset": 53`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			scanMask = tt.mask
			jsonOut = tt.json

			output, err := captureOutput(t, func() error {
				return runScan([]string{exe, tt.signature})
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("runScan() error = %v, wantErr %v\nOutput: %s", err, tt.wantErr, output)
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestContextBytes(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	if got, want := contextBytes(data, 2, 2, 8), "01 02 [03 04] 05 06"; got != want {
		t.Fatalf("contextBytes = %q, want %q", got, want)
	}
	if got, want := contextBytes(data, 0, 1, 1), " [01] 02"; got != want {
		t.Fatalf("contextBytes = %q, want %q", got, want)
	}
}
