package player

// VLC implements Player for VLC media player.
type VLC struct{}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Available() bool { return lookPath("vlc") }

func (v *VLC) Args(url, title string) []string {
	return []string{
		url,
		"--meta-title", title,
		"--play-and-exit",
	}
}
