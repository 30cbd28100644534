// Package parse extracts and validates structured JSON from free-form AI
// model output.
//
// Two shapes are consumed. Review lists are additive and independently
// droppable, so anything that fails validation is silently discarded and a
// completely unparseable response yields nil rather than an error. A
// solution is an atomic unit of work (files, changes, commit message) and
// cannot be partially trusted, so a malformed solution is an error the
// issue-fix run must abort on.
package parse
