package url

import "strconv"

// Format renders u back into the textual form accepted by Parse. It panics
// if u.Protocol is not one of the three known protocols, since that
// indicates a URL constructed outside of Parse's invariants.
func (u *URL) Format() string {
	switch u.Protocol {
	case Protocol_Local:
		return u.Path
	case Protocol_Server:
		return serverPrefix + u.Hostname + ":" + strconv.FormatUint(uint64(u.Port), 10)
	case Protocol_Remote:
		result := remotePrefix
		if u.Username != "" {
			result += u.Username + "@"
		}
		return result + u.Hostname + ":" + u.Path
	default:
		panic("formatting URL with invalid protocol")
	}
}
