//go:build chessdebug

package chess

const debugAssertions = true
