package collision

// OnStealRequest handles an inbound StealRequest from nodeID, mirroring
// GridJobStealingCollisionSpi's message listener. If the sender is not (or
// no longer) a known peer, the message is dropped — this is how the race
// between a message arriving before its sender's join event is resolved.
//
// The field is named delta but the wire contract is an absolute
// replacement of the sender's previously-advertised capacity, not an
// increment (see DESIGN.md's Open Question decision).
func (e *Engine) OnStealRequest(nodeID NodeID, msg StealRequest) {
	info, ok := e.table.Rcv(nodeID)
	if !ok {
		return
	}

	info.Lock()
	previous := info.JobsToSteal()
	e.stealReqs.Add(int64(msg.Delta) - int64(previous))
	info.Reset(int(msg.Delta))
	info.Unlock()

	e.stealRequestsReceived.Add(1)
	if e.metrics != nil {
		e.metrics.RecordStealRequestRecv()
	}

	if e.onStealCapacityChanged != nil {
		e.onStealCapacityChanged()
	}
}
