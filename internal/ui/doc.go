// Package ui formats foldervault's terminal output.
//
// Each Formatter names a kind of content rather than a color:
//
//	ui.Code.Sprint("foldervault vault decrypt 3")
//	ui.Path.Sprint("photos/2024/a.jpg.enc")
//	ui.Highlight.Sprint("Tax returns")
//	ui.Muted.Sprint("and 12 more")
//
// Success, Error, Warning and Info color status marks. SuccessLine,
// ErrorLine and HintLine build whole status lines, and VaultMode colors a
// vault's encrypted or decrypted state.
//
// Color is dropped when NO_COLOR is set or fatih/color decides the output
// is not a color terminal. Code, Highlight and Muted then fall back to
// `backticks`, 'quotes' and (parens) so they stay distinguishable.
package ui
