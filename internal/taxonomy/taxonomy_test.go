package taxonomy

import (
	"strings"
	"testing"
)

func TestCrashIDDeterministic(t *testing.T) {
	a := CrashID("windows", "WER", "Application Error", `C:\ProgramData\WER\Report.wer`)
	b := CrashID("windows", "WER", "Application Error", `C:\ProgramData\WER\Report.wer`)
	if a != b {
		t.Fatalf("same input produced different ids: %s vs %s", a, b)
	}

	c := CrashID("windows", "WER", "Application Error", `C:\ProgramData\WER\Report2.wer`)
	if a == c {
		t.Fatalf("distinct paths collided on id %s", a)
	}
}

func TestCrashIDFormat(t *testing.T) {
	id := CrashID("linux", "apport", "Signal 11", "/var/crash/_usr_bin_foo.crash")
	if !strings.HasPrefix(id, "imported-") {
		t.Fatalf("missing prefix: %s", id)
	}
	hexPart := strings.TrimPrefix(id, "imported-")
	if len(hexPart) != 16 {
		t.Fatalf("want 16 hex digits, got %d in %s", len(hexPart), id)
	}
	for _, ch := range hexPart {
		if !((ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f')) {
			t.Fatalf("non-hex digit %q in %s", ch, id)
		}
	}
}

func TestSeverityFromWindowsLevel(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{1, SeverityCritical},
		{2, SeverityError},
		{3, SeverityWarning},
		{4, SeverityInformation},
		{5, SeverityInformation},
		{0, SeverityInformation},
		{99, SeverityInformation},
	}
	for _, tt := range tests {
		if got := SeverityFromWindowsLevel(tt.level); got != tt.want {
			t.Errorf("level %d: got %s, want %s", tt.level, got, tt.want)
		}
	}
}

func TestSeverityFromLevelName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Critical", SeverityCritical},
		{"Error", SeverityError},
		{"Audit Failure", SeverityError},
		{"Warning", SeverityWarning},
		{"Information", SeverityInformation},
		{"Verbose", SeverityInformation},
		{"", SeverityInformation},
	}
	for _, tt := range tests {
		if got := SeverityFromLevelName(tt.name); got != tt.want {
			t.Errorf("%q: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestSeverityFromJournalPriority(t *testing.T) {
	tests := []struct {
		priority string
		want     string
	}{
		{"0", SeverityCritical},
		{"1", SeverityCritical},
		{"2", SeverityCritical},
		{"3", SeverityError},
		{"4", SeverityWarning},
		{"5", SeverityInformation},
		{"6", SeverityInformation},
		{"7", SeverityInformation},
		{"", SeverityInformation},
		{"garbage", SeverityInformation},
	}
	for _, tt := range tests {
		if got := SeverityFromJournalPriority(tt.priority); got != tt.want {
			t.Errorf("priority %q: got %s, want %s", tt.priority, got, tt.want)
		}
	}
}

func TestSeverityFromUnifiedType(t *testing.T) {
	tests := []struct {
		messageType string
		want        string
	}{
		{"Fault", SeverityCritical},
		{"Error", SeverityError},
		{"Warning", SeverityWarning},
		{"Default", SeverityInformation},
		{"Debug", SeverityInformation},
		{"", SeverityInformation},
	}
	for _, tt := range tests {
		if got := SeverityFromUnifiedType(tt.messageType); got != tt.want {
			t.Errorf("%q: got %s, want %s", tt.messageType, got, tt.want)
		}
	}
}

func TestCategoryFromChannel(t *testing.T) {
	tests := []struct {
		channel string
		want    string
	}{
		{"Security", CategorySecurity},
		{"Security Audit Log", CategorySecurity},
		{"System", CategorySystem},
		{"Application", CategoryApplication},
		{"Microsoft-Windows-TaskScheduler/Operational", CategoryApplication},
	}
	for _, tt := range tests {
		if got := CategoryFromChannel(tt.channel); got != tt.want {
			t.Errorf("channel %q: got %s, want %s", tt.channel, got, tt.want)
		}
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"audit wins first", []string{"Security Audit Log"}, CategoryAudit},
		{"security keyword", []string{"Security"}, CategorySecurity},
		{"sshd", []string{"sshd"}, CategorySecurity},
		{"sudo", []string{"sudo", "sudo"}, CategorySecurity},
		{"kernel", []string{"kernel"}, CategorySystem},
		{"systemd unit", []string{"", "systemd-resolved.service"}, CategorySystem},
		{"udev", []string{"systemd-udevd"}, CategorySystem},
		{"plain process", []string{"nginx", "nginx"}, CategoryApplication},
		{"empty", nil, CategoryApplication},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Category(tt.parts...); got != tt.want {
				t.Errorf("Category(%v) = %s, want %s", tt.parts, got, tt.want)
			}
		})
	}
}
