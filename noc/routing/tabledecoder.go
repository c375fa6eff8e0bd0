package routing

import "fmt"

// TableDecoder decodes destinations through a two-level lookup-table
// hierarchy. A unicast route payload carries a local-level index and an
// upper-level index; the upper index is compared against the router's own
// identity to select which table answers. A multicast route payload carries
// one destination bitfield per level: a bit per local destination and a bit
// per upper-hierarchy unit.
type TableDecoder struct {
	routerID uint64

	localTable Table
	upperTable Table

	localIdxWidth int
	upperIdxWidth int
}

// TableDecoderBuilder can build TableDecoders.
type TableDecoderBuilder struct {
	routerID   uint64
	localTable Table
	upperTable Table
}

// MakeTableDecoderBuilder creates a TableDecoderBuilder.
func MakeTableDecoderBuilder() TableDecoderBuilder {
	return TableDecoderBuilder{}
}

// WithRouterID sets the upper-hierarchy identity of the router that the
// decoder serves.
func (b TableDecoderBuilder) WithRouterID(id uint64) TableDecoderBuilder {
	b.routerID = id
	return b
}

// WithLocalTable sets the table that answers destinations within the
// router's own hierarchy.
func (b TableDecoderBuilder) WithLocalTable(t Table) TableDecoderBuilder {
	b.localTable = t
	return b
}

// WithUpperTable sets the table that answers destinations in other
// hierarchies.
func (b TableDecoderBuilder) WithUpperTable(t Table) TableDecoderBuilder {
	b.upperTable = t
	return b
}

// Build creates the decoder. The tables are the configuration-register load
// of the router: they must be fully defined before Build and are read-only
// afterwards.
func (b TableDecoderBuilder) Build() *TableDecoder {
	if b.localTable == nil || b.upperTable == nil {
		panic("table decoder requires both a local and an upper table")
	}

	if b.routerID >= uint64(b.upperTable.Len()) {
		panic(fmt.Sprintf("router id %d beyond the upper table's %d entries",
			b.routerID, b.upperTable.Len()))
	}

	return &TableDecoder{
		routerID:      b.routerID,
		localTable:    b.localTable,
		upperTable:    b.upperTable,
		localIdxWidth: WidthOf(b.localTable.Len()),
		upperIdxWidth: WidthOf(b.upperTable.Len()),
	}
}

// Decode resolves a route payload to a destination bitmap.
func (d *TableDecoder) Decode(route uint64, multicast bool) Decision {
	if multicast {
		return d.decodeMulticast(route)
	}

	return d.decodeUnicast(route)
}

func (d *TableDecoder) decodeUnicast(route uint64) Decision {
	localIdx := route & Mask(d.localIdxWidth)
	upperIdx := (route >> d.localIdxWidth) & Mask(d.upperIdxWidth)

	var destPorts uint64
	if upperIdx == d.routerID {
		destPorts = d.localTable.Lookup(localIdx)
	} else {
		destPorts = d.upperTable.Lookup(upperIdx)
	}

	// Table-routed payloads carry the destination identifier end to end.
	return Decision{
		DestPorts: destPorts,
		NextRoute: route,
	}
}

// decodeMulticast reads the route payload as {upper bitfield, local
// bitfield}. The local bitfield only applies when the upper bitfield names
// this router's own hierarchy; the upper bitfield contributes one remote hop
// per foreign hierarchy that still has deliveries pending.
func (d *TableDecoder) decodeMulticast(route uint64) Decision {
	localFieldWidth := d.localTable.Len()
	localField := route & Mask(localFieldWidth)
	upperField := (route >> localFieldWidth) & Mask(d.upperTable.Len())

	ownBit := OneHot(int(d.routerID))

	var destPorts, localPorts uint64

	if upperField&ownBit != 0 {
		ForEachSetBit(localField, func(i int) {
			localPorts |= d.localTable.Lookup(uint64(i))
		})
		destPorts |= localPorts
	}

	// Each remote copy only carries the upper units behind its own output
	// port, so parallel copies can never re-deliver each other's share.
	remoteRoutes := make(map[int]uint64)
	remoteUnits := upperField &^ ownBit
	ForEachSetBit(remoteUnits, func(i int) {
		ports := d.upperTable.Lookup(uint64(i))
		destPorts |= ports

		ForEachSetBit(ports, func(p int) {
			remoteRoutes[p] |= OneHot(i) << localFieldWidth
		})
	})

	for p := range remoteRoutes {
		remoteRoutes[p] |= localField
	}

	return Decision{
		DestPorts: destPorts,
		Multicast: true,
		// Local copies stay in this hierarchy: strip the upper field.
		NextRouteLocal: localField,
		RemoteRoutes:   remoteRoutes,
		LocalPorts:     localPorts,
	}
}
