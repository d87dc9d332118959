// Package google provides shared infrastructure for Google API access:
// service construction, rate limiting, and error translation into domain
// errors. The Drive remote store lives in the drive subpackage.
package google
