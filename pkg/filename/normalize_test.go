package filename

import "testing"

func TestCapitalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"jane doe", "Jane Doe"},
		{"mcKenzie lee", "McKenzie Lee"},
		{"JANE", "JANE"},
		{"  extra   spaces ", "Extra Spaces"},
		{"élodie", "Élodie"},
		{"", ""},
		{"2girls", "2girls"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Capitalize(tt.input); got != tt.want {
				t.Errorf("Capitalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDedupeTitle(t *testing.T) {
	tests := []struct {
		title      string
		resolution string
		want       string
	}{
		{"Jane 1080p", "1080p", "Jane"},
		{"Jane 720P Doe", "1080p", "Jane Doe"},
		{"Jane 4K", "[2160p][4K]", "Jane"},
		{"Jane [2160p][4K]", "[2160p][4K]", "Jane"},
		{"Jane 480p", "", "Jane"},
		{"Jane Doe", "1080p", "Jane Doe"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := dedupeTitle(tt.title, tt.resolution); got != tt.want {
				t.Errorf("dedupeTitle(%q, %q) = %q, want %q", tt.title, tt.resolution, got, tt.want)
			}
		})
	}
}

func TestTags_Resolution(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   string
		suffix string
	}{
		{"default", nil, "1080p", ""},
		{"4k", []string{"4K"}, "[2160p][4K]", ""},
		{"2160p after 720p", []string{"720p", "2160p"}, "[2160p][4K]", ""},
		{"first seen", []string{"480p", "720p"}, "480p", ""},
		{"rq alone", []string{"rq"}, "", "[rq]"},
		{"rq with resolution", []string{"[RQ]", "720p"}, "720p", "[rq]"},
		{"rq with 4k", []string{"rq", "4k"}, "[2160p][4K]", "[rq]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tags Tags
			for _, tok := range tt.tokens {
				if !tags.add(tok) {
					t.Fatalf("add(%q) not recognized", tok)
				}
			}
			if got := tags.Resolution(); got != tt.want {
				t.Errorf("Resolution() = %q, want %q", got, tt.want)
			}
			if got := tags.Suffix(); got != tt.suffix {
				t.Errorf("Suffix() = %q, want %q", got, tt.suffix)
			}
		})
	}
}

func TestIsMarker(t *testing.T) {
	for _, tok := range []string{"4K", "XXX", "1080p", "mp4", "MKV", "rq", "[rq]", "[XC]", "wmv-lewd", "MP4-WRB"} {
		if !isMarker(tok) {
			t.Errorf("isMarker(%q) = false, want true", tok)
		}
	}
	for _, tok := range []string{"jane", "mp3", "mp4x", "lewd-wmv", "xc"} {
		if isMarker(tok) {
			t.Errorf("isMarker(%q) = true, want false", tok)
		}
	}
}

func TestTwoDigitYear(t *testing.T) {
	if got := twoDigitYear("2021"); got != "21" {
		t.Errorf("twoDigitYear(2021) = %q", got)
	}
	if got := twoDigitYear("21"); got != "21" {
		t.Errorf("twoDigitYear(21) = %q", got)
	}
}
