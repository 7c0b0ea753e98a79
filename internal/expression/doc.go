// Package expression implements the small expression language evaluated
// against a mapping row's coerced value.
//
// An expression sees exactly one variable, val. It supports decimal
// arithmetic (+ - * / %), string concatenation with +, comparisons,
// logical operators (&& || !), the conditional a ? b : c and a fixed set of
// intrinsic functions:
//
//	upper(s) lower(s) trim(s) len(s)
//	substr(s, start[, end])
//	format(pattern, args...)
//	round(x[, places])
//
// Arithmetic runs on github.com/shopspring/decimal so that 100 * 1.1 is
// exactly 110. Integer operands keep integer results and division between
// integers truncates. Anything outside this grammar is rejected at compile
// time.
package expression
