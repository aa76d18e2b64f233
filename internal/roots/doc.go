// Package roots computes the ordered root directories searched for
// attachments.
package roots
