package panel

// State is the control panel mode. Exactly one is active at a time.
type State int

const (
	StateIdle State = iota
	StatePoweredOff
	StateMaster
	StateGuest
	StateLocked
	StatePasswordChangeCurrent
	StatePasswordChangeNew
	StatePasswordChangeReconfirm
)

var stateNames = map[State]string{
	StateIdle:                    "idle",
	StatePoweredOff:              "powered_off",
	StateMaster:                  "master",
	StateGuest:                   "guest",
	StateLocked:                  "locked",
	StatePasswordChangeCurrent:   "password_change_current",
	StatePasswordChangeNew:       "password_change_new",
	StatePasswordChangeReconfirm: "password_change_reconfirm",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// collectsDigits reports whether digit keys append to the pending code.
func (s State) collectsDigits() bool {
	switch s {
	case StateIdle, StatePasswordChangeCurrent, StatePasswordChangeNew, StatePasswordChangeReconfirm:
		return true
	}
	return false
}

// Key is a single keypad press, encoded the way keypads send it on the wire.
type Key byte

const (
	KeyCancel Key = '*'
	KeyPanic  Key = '!'
)

// IsDigit reports whether k is one of '0'..'9'.
func (k Key) IsDigit() bool {
	return k >= '0' && k <= '9'
}

func (k Key) String() string {
	switch {
	case k.IsDigit():
		return string(rune(k))
	case k == KeyCancel:
		return "cancel"
	case k == KeyPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Digit returns the key for digit d (0..9).
func Digit(d int) Key {
	return Key('0' + byte(d%10))
}

// Functions bound to digit keys while a master is logged in.
const (
	masterKeyPowerOff       Key = '1'
	masterKeyReset          Key = '2'
	masterKeyArm            Key = '3'
	masterKeyDisarm         Key = '4'
	masterKeyPasswordChange Key = '5'
	// '6' is reserved and currently does nothing.
)
