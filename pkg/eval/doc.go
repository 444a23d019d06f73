// Package eval is the semantic evaluation algebra: composable effect
// contracts that let one control-flow implementation drive many
// interpretations of what a value is.
//
// Control effects (function application, boolean elimination, looping) are
// tagged operation types performed through code.hybscloud.com/kont. Every
// request suspends the computation; the Machine handler resolves it against a
// pluggable runtime.Domain plus heap and environment collaborators, then
// resumes through the captured continuation. The three effect families have
// distinct resumption shapes and are deliberately kept separate.
//
// Evaluation order is strictly sequential and deterministic: sub-terms run
// left to right as written in each combinator, on a single logical thread.
package eval
