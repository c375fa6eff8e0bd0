package messaging

import "github.com/sarchlab/wormnet/sim"

// A Credit tells the upstream sender that one unit of buffer space is freed
// for one virtual channel.
type Credit struct {
	sim.MsgMeta

	VC int
}

// Meta returns the meta data associated with the credit.
func (c *Credit) Meta() *sim.MsgMeta {
	return &c.MsgMeta
}

// Clone returns a cloned credit with a different ID.
func (c *Credit) Clone() sim.Msg {
	cloneMsg := *c
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// MakeCredit creates a credit message for one virtual channel.
func MakeCredit(src, dst sim.RemotePort, vc int) *Credit {
	c := &Credit{VC: vc}
	c.ID = sim.GetIDGenerator().Generate()
	c.Src = src
	c.Dst = dst
	c.TrafficClass = "messaging.Credit"

	return c
}
