package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for the chat command.
func PrintBanner() {
	p := termenv.ColorProfile()
	s1 := termenv.String("   ___  _ __ __ _ _ __   __ _  ___ ").Foreground(p.Color("#fb923c"))
	s2 := termenv.String("  / _ \\| '__/ _` | '_ \\ / _` |/ _ \\").Foreground(p.Color("#f97316"))
	s3 := termenv.String(" | (_) | | | (_| | | | | (_| |  __/").Foreground(p.Color("#ea580c"))
	s4 := termenv.String("  \\___/|_|  \\__,_|_| |_|\\__, |\\___|").Foreground(p.Color("#c2410c"))
	s5 := termenv.String("                         __/ |     ").Foreground(p.Color("#9a3412"))
	s6 := termenv.String("                        |___/      ").Foreground(p.Color("#7c2d12"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
}
