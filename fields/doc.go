// Package fields pulls the labelled header values (client name, project
// description, project number and purchase order reference) out of a
// document's body text.
package fields
