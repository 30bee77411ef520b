package textutil

import "testing"

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{"i contain cool \u00fcml\u00e4uts.txt", "i_contain_cool_umlauts.txt"},
		{".hidden.png", "hidden.png"},
		{"__init__.py", "init__.py"},
		{"a\tb\n c.jpeg", "a_b_c.jpeg"},
		{"C:\\Users\\me\\pic.PNG", "C_Users_me_pic.PNG"},
		{"\uff21\uff22.jpg", "AB.jpg"},
		{"$%^&", ""},
		{"..", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SecureFilename(tt.in); got != tt.want {
			t.Errorf("SecureFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
