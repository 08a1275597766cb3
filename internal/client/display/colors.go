package display

import "fmt"

// Terminal color codes, blank when output is not a terminal
var (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

// DisableColors blanks every color code
func DisableColors() {
	Reset, Red, Green, Yellow, Blue, Magenta, Cyan, White = "", "", "", "", "", "", "", ""
}

// Prompt returns a colored prompt string
func Prompt(text string) string {
	return Yellow + text + Yellow + " > " + Reset
}

// Println prints text in color followed by a newline
func Println(color, text string) {
	fmt.Printf("%s%s%s\n", color, text, Reset)
}
