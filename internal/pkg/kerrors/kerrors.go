package kerrors

// Linux kernel error codes
const (
	EPERM        int64 = 1   // Operation not permitted
	ENOENT       int64 = 2   // No such file or directory
	EBADF        int64 = 9   // Bad file number
	ENOMEM       int64 = 12  // Out of memory
	EEXIST       int64 = 17  // File exists
	EINVAL       int64 = 22  // Invalid argument
	ENFILE       int64 = 23  // File table overflow
	ENOSPC       int64 = 28  // No space left on device
	ENAMETOOLONG int64 = 36  // File name too long
	ELOOP        int64 = 40  // Too many symbolic links encountered
	ESTALE       int64 = 116 // Stale file handle
	ENODEV       int64 = 19  // No such device
	EOPNOTSUPP   int64 = 95  // Operation not supported

	ENOMEM_NEG int64 = -ENOMEM // Out of memory (negative)
	EINVAL_NEG int64 = -EINVAL // Invalid argument (negative)
)

// Neg turns an errno into the value sent over the wire.
func Neg(code int64) int64 {
	if code < 0 {
		return code
	}
	return -code
}
