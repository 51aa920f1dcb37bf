package eventbus

import "errors"

var ErrPublisherClosed = errors.New("eventbus: publisher is closed")
