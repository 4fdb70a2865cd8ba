package analytics

import (
	"time"
)

// Run collects data points over a single apply and reports them as one
// event when it finishes
type Run struct {
	props map[string]interface{}
	start time.Time
}

// SetProp sets a value to a datapoint by key
func (r *Run) SetProp(key string, value interface{}) {
	r.props[key] = value
}

// Before prepares the analytics properties and sets the start time
func (r *Run) Before(name string) error {
	r.props = make(map[string]interface{})
	r.props["name"] = name
	r.start = time.Now()

	return Client.Publish("apply-start", r.props)
}

// After enqueues the sending of analytics
func (r *Run) After(result error) error {
	r.props["duration"] = time.Since(r.start)

	var event string
	if result == nil {
		event = "apply-success"
	} else {
		event = "apply-failure"
	}

	Client.Publish(event, r.props)

	return nil
}
