package copperx

import (
	"context"
	"net/http"
)

// AuthorizeNotifications signs a Pusher private-channel subscription for socketID.
func (c *Client) AuthorizeNotifications(ctx context.Context, token, socketID, channel string) (*ChannelAuth, error) {
	body := map[string]string{"socket_id": socketID, "channel_name": channel}
	var a ChannelAuth
	if err := c.do(ctx, http.MethodPost, "/api/notifications/auth", token, nil, body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
