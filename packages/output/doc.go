// Package output provides the console and XML rendering used by the reporter.
//
//   - Presenter: colors, symbols, indentation, diffs and the run epilogue
//   - XUnitWriter: streams a JUnit/XUnit testsuite document tag by tag
//
// Attribute values and text are escaped with EscapeAttr and EscapeText.
package output
