package ui

//nolint:gochecknoglobals
var bannerArt = []string{
	" ██████╗ ███████╗██╗  ██╗███████╗██╗     ██╗     ",
	"██╔════╝ ██╔════╝██║  ██║██╔════╝██║     ██║     ",
	"██║  ███╗███████╗███████║█████╗  ██║     ██║     ",
	"██║   ██║╚════██║██╔══██║██╔══╝  ██║     ██║     ",
	"╚██████╔╝███████║██║  ██║███████╗███████╗███████╗",
	" ╚═════╝ ╚══════╝╚═╝  ╚═╝╚══════╝╚══════╝╚══════╝",
}
