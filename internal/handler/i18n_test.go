package handler

import "testing"

func TestLocalizeMessage(t *testing.T) {
	tests := []struct {
		name     string
		language string
		key      string
		want     string
	}{
		{
			name:     "english",
			language: "en",
			key:      "medication.notFound",
			want:     "Medication not found",
		},
		{
			name:     "thai",
			language: "th",
			key:      "medication.notFound",
			want:     "ไม่พบรายการยา",
		},
		{
			name:     "unknown language falls back to thai",
			language: "zh",
			key:      "logout.ok",
			want:     "ออกจากระบบแล้ว",
		},
		{
			name:     "unknown key stays",
			language: "en",
			key:      "custom.key",
			want:     "custom.key",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := localizeMessage(tc.language, tc.key)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
