// Package testing provides test utilities for the heatgrid library.
//
// It offers an embedded NATS server for transport and snapshot sink tests,
// a fault-injecting transport wrapper and a logger bound to testing.T. It
// follows Go's convention of providing testing utilities in a dedicated
// package (similar to net/http/httptest).
//
// Example usage:
//
//	import (
//	    "testing"
//	    heattest "github.com/arloliu/heatgrid/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := heattest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
