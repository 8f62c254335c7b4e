// Package repair turns unreliable model completions into valid JSON text.
//
// Repair is a normalize-parse-or-recover procedure:
//
//  1. Normalize: single quotes become double quotes, surrounding markdown
//     fences are stripped.
//  2. Strict parse: the text is decoded as a generic JSON value and list
//     entries lacking a non-empty "description" are discarded.
//  3. Recover: when strict parsing fails, flat {"code": ..., "description": ...}
//     objects are scavenged from the text.
//
// An optional lenient tier, enabled with WithLenient, runs a general purpose
// JSON repairer between steps 2 and 3.
//
// The output of Run is always valid JSON text; repair never fails.
package repair
