// internal/mqtt/publish.go
package mqtt

import "fmt"

// Publish sends payload to topic and waits for the broker acknowledgment
// (QoS > 0) or the local write (QoS 0).
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := c.checkPublish(topic, qos); err != nil {
		return err
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// PublishAsync hands payload to paho and returns without waiting.
// done, if non-nil, runs on its own goroutine once the token completes.
// Only validation and connection errors are returned directly.
func (c *Client) PublishAsync(topic string, payload []byte, qos byte, retained bool, done func(error)) error {
	if err := c.checkPublish(topic, qos); err != nil {
		return err
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if done == nil {
		return nil
	}
	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			done(fmt.Errorf("%w: %w", ErrPublishFailed, err))
			return
		}
		done(nil)
	}()
	return nil
}

func (c *Client) checkPublish(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}
