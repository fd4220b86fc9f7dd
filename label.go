package sms

import "strconv"

// uint64ToLabel renders a proc_id as a Prometheus label value.
func uint64ToLabel(procID uint64) string {
	return strconv.FormatUint(procID, 10)
}
