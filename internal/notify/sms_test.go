package notify

import "testing"

func TestRenderTemplate(t *testing.T) {
	cases := []struct {
		name     string
		template string
		org      string
		want     string
	}{
		{
			name:     "default template",
			template: "",
			org:      "",
			want:     "Your token number is: A-103. Please wait for your turn.",
		},
		{
			name:     "all placeholders",
			template: "{{ORG}}: token {{TOKEN}} for {{SERVICE}}",
			org:      "City Clinic",
			want:     "City Clinic: token A-103 for Pharmacy",
		},
		{
			name:     "repeated placeholder",
			template: "{{TOKEN}} {{TOKEN}}",
			org:      "x",
			want:     "A-103 A-103",
		},
		{
			name:     "no placeholders",
			template: "Please come to the branch.",
			org:      "x",
			want:     "Please come to the branch.",
		},
	}

	for _, tt := range cases {
		got := RenderTemplate(tt.template, "A-103", "Pharmacy", tt.org)
		if got != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}
