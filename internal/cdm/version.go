package cdm

import (
	"fmt"
	"slices"
	"sort"
)

// Version is one released revision of the schema.
type Version struct {
	// Name is the version string written verbatim into every envelope.
	Name string

	// Namespace qualifies every named type of the version's schema.
	Namespace string

	// Source is the instrumentation-source symbol stamped on every envelope.
	Source Enum

	// HostTA1Version reports whether Host records carry the ta1Version field.
	HostTA1Version bool

	symbols map[EnumKind][]string
	schema  string
}

// V19 is schema release 19.
var V19 = newVersion("19", "com.bbn.tc.schema.avro.cdm19", "SOURCE_FREEBSD_DTRACE_CADETS", false, map[EnumKind][]string{
	EnumRecordType:            recordTypes19,
	EnumHostType:              hostTypes19,
	EnumSubjectType:           subjectTypes19,
	EnumSrcSinkType:           srcSinkTypes19,
	EnumEventType:             eventTypes19,
	EnumInstrumentationSource: sources19,
})

// V20 is schema release 20.
var V20 = newVersion("20", "com.bbn.tc.schema.avro.cdm20", "SOURCE_PVM_CADETS", true, map[EnumKind][]string{
	EnumRecordType:            recordTypes20,
	EnumHostType:              hostTypes20,
	EnumSubjectType:           subjectTypes20,
	EnumSrcSinkType:           srcSinkTypes20,
	EnumEventType:             eventTypes20,
	EnumInstrumentationSource: sources20,
})

// DefaultVersion is used when no version is configured.
var DefaultVersion = V20

var versions = map[string]*Version{
	V19.Name: V19,
	V20.Name: V20,
}

func newVersion(name, namespace string, source Enum, ta1 bool, symbols map[EnumKind][]string) *Version {
	v := &Version{
		Name:           name,
		Namespace:      namespace,
		Source:         source,
		HostTA1Version: ta1,
		symbols:        symbols,
	}
	v.schema = buildSchema(v)
	return v
}

// LookupVersion returns the version with the given name.
func LookupVersion(name string) (*Version, error) {
	v, ok := versions[name]
	if !ok {
		return nil, fmt.Errorf("unsupported schema version %q (supported: %v)", name, VersionNames())
	}
	return v, nil
}

// VersionNames returns the supported version names in ascending order.
func VersionNames() []string {
	names := make([]string, 0, len(versions))
	for n := range versions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Symbols returns the ordered symbol list of an enumeration.
func (v *Version) Symbols(k EnumKind) []string {
	return slices.Clone(v.symbols[k])
}

// Code returns the integer code of sym in enumeration k.
func (v *Version) Code(k EnumKind, sym Enum) (int, error) {
	syms, ok := v.symbols[k]
	if !ok {
		return 0, fmt.Errorf("version %s: unknown enumeration %s", v.Name, k)
	}
	i := slices.Index(syms, string(sym))
	if i < 0 {
		return 0, fmt.Errorf("version %s: %s has no symbol %s", v.Name, k, sym)
	}
	return i, nil
}

// FullName qualifies a type name with the version's namespace.
func (v *Version) FullName(typeName string) string {
	return v.Namespace + "." + typeName
}

// Schema returns the Avro schema (JSON) of the version's envelope record.
func (v *Version) Schema() string {
	return v.schema
}

func (v *Version) String() string {
	return "CDM" + v.Name
}

// Code tables. A symbol's code is its index.

var recordTypes19 = []string{
	"RECORD_HOST",
	"RECORD_PRINCIPAL",
	"RECORD_PROVENANCE_TAG_NODE",
	"RECORD_SUBJECT",
	"RECORD_FILE_OBJECT",
	"RECORD_IPC_OBJECT",
	"RECORD_REGISTRY_KEY_OBJECT",
	"RECORD_NET_FLOW_OBJECT",
	"RECORD_MEMORY_OBJECT",
	"RECORD_SRC_SINK_OBJECT",
	"RECORD_EVENT",
	"RECORD_UNIT_DEPENDENCY",
	"RECORD_TIME_MARKER",
}

var recordTypes20 = []string{
	"RECORD_HOST",
	"RECORD_PRINCIPAL",
	"RECORD_PROVENANCE_TAG_NODE",
	"RECORD_UNKNOWN_PROVENANCE_NODE",
	"RECORD_SUBJECT",
	"RECORD_FILE_OBJECT",
	"RECORD_IPC_OBJECT",
	"RECORD_REGISTRY_KEY_OBJECT",
	"RECORD_PACKET_SOCKET_OBJECT",
	"RECORD_NET_FLOW_OBJECT",
	"RECORD_MEMORY_OBJECT",
	"RECORD_SRC_SINK_OBJECT",
	"RECORD_EVENT",
	"RECORD_UNIT_DEPENDENCY",
	"RECORD_TIME_MARKER",
	"RECORD_END_MARKER",
}

var hostTypes19 = []string{
	"HOST_DESKTOP",
	"HOST_SERVER",
	"HOST_OTHER",
}

var hostTypes20 = []string{
	"HOST_DESKTOP",
	"HOST_SERVER",
	"HOST_MOBILE",
	"HOST_OTHER",
}

var subjectTypes19 = []string{
	"SUBJECT_PROCESS",
	"SUBJECT_THREAD",
	"SUBJECT_UNIT",
	"SUBJECT_OTHER",
}

var subjectTypes20 = []string{
	"SUBJECT_PROCESS",
	"SUBJECT_THREAD",
	"SUBJECT_UNIT",
	"SUBJECT_BASIC_BLOCK",
	"SUBJECT_OTHER",
}

var eventTypes19 = []string{
	"EVENT_ACCEPT",
	"EVENT_ADD_OBJECT_ATTRIBUTE",
	"EVENT_BIND",
	"EVENT_BLIND",
	"EVENT_BOOT",
	"EVENT_CHANGE_PRINCIPAL",
	"EVENT_CHECK_FILE_ATTRIBUTES",
	"EVENT_CLONE",
	"EVENT_CLOSE",
	"EVENT_CONNECT",
	"EVENT_CREATE_OBJECT",
	"EVENT_CREATE_THREAD",
	"EVENT_DUP",
	"EVENT_EXECUTE",
	"EVENT_EXIT",
	"EVENT_FLOWS_TO",
	"EVENT_FCNTL",
	"EVENT_FORK",
	"EVENT_LINK",
	"EVENT_LOADLIBRARY",
	"EVENT_LOGCLEAR",
	"EVENT_LOGIN",
	"EVENT_LOGOUT",
	"EVENT_LSEEK",
	"EVENT_MMAP",
	"EVENT_MODIFY_FILE_ATTRIBUTES",
	"EVENT_MODIFY_PROCESS",
	"EVENT_MPROTECT",
	"EVENT_OTHER",
	"EVENT_OPEN",
	"EVENT_READ",
	"EVENT_READ_SOCKET_PARAMS",
	"EVENT_RECVFROM",
	"EVENT_RECVMSG",
	"EVENT_RENAME",
	"EVENT_SENDTO",
	"EVENT_SENDMSG",
	"EVENT_SERVICEINSTALL",
	"EVENT_SHM",
	"EVENT_SIGNAL",
	"EVENT_STARTSERVICE",
	"EVENT_TRUNCATE",
	"EVENT_UMOUNT",
	"EVENT_UNIT",
	"EVENT_UNLINK",
	"EVENT_UPDATE",
	"EVENT_WAIT",
	"EVENT_WRITE",
	"EVENT_WRITE_SOCKET_PARAMS",
}

var eventTypes20 = []string{
	"EVENT_ACCEPT",
	"EVENT_ADD_OBJECT_ATTRIBUTE",
	"EVENT_BIND",
	"EVENT_BLIND",
	"EVENT_BOOT",
	"EVENT_CHANGE_PRINCIPAL",
	"EVENT_CHECK_FILE_ATTRIBUTES",
	"EVENT_CLONE",
	"EVENT_CLOSE",
	"EVENT_CONNECT",
	"EVENT_CORRELATION",
	"EVENT_CREATE_OBJECT",
	"EVENT_CREATE_THREAD",
	"EVENT_DUP",
	"EVENT_EXECUTE",
	"EVENT_EXIT",
	"EVENT_FLOWS_TO",
	"EVENT_FCNTL",
	"EVENT_FORK",
	"EVENT_INIT_MODULE",
	"EVENT_LINK",
	"EVENT_LOADLIBRARY",
	"EVENT_LOGCLEAR",
	"EVENT_LOGIN",
	"EVENT_LOGOUT",
	"EVENT_LSEEK",
	"EVENT_MMAP",
	"EVENT_MODIFY_FILE_ATTRIBUTES",
	"EVENT_MODIFY_PROCESS",
	"EVENT_MOUNT",
	"EVENT_MPROTECT",
	"EVENT_OTHER",
	"EVENT_OPEN",
	"EVENT_READ",
	"EVENT_READ_SOCKET_PARAMS",
	"EVENT_RECVFROM",
	"EVENT_RECVMSG",
	"EVENT_RENAME",
	"EVENT_SENDTO",
	"EVENT_SENDMSG",
	"EVENT_SERVICEINSTALL",
	"EVENT_SHM",
	"EVENT_SIGNAL",
	"EVENT_STARTSERVICE",
	"EVENT_TRUNCATE",
	"EVENT_UMOUNT",
	"EVENT_UNIT",
	"EVENT_UNLINK",
	"EVENT_UPDATE",
	"EVENT_WAIT",
	"EVENT_WRITE",
	"EVENT_WRITE_SOCKET_PARAMS",
	"EVENT_TEE",
	"EVENT_SPLICE",
	"EVENT_VMSPLICE",
}

var sources19 = []string{
	"SOURCE_ANDROID_JAVA_CLEARSCOPE",
	"SOURCE_ANDROID_NATIVE_CLEARSCOPE",
	"SOURCE_FREEBSD_OPENBSM_TRACE",
	"SOURCE_FREEBSD_DTRACE_CADETS",
	"SOURCE_FREEBSD_TESLA_CADETS",
	"SOURCE_FREEBSD_LOOM_CADETS",
	"SOURCE_FREEBSD_MACIF_CADETS",
	"SOURCE_WINDOWS_DIFT_FAROS",
	"SOURCE_WINDOWS_PSA_FAROS",
	"SOURCE_WINDOWS_FIVEDIRECTIONS",
	"SOURCE_LINUX_AUDIT_TRACE",
	"SOURCE_LINUX_PROC_TRACE",
	"SOURCE_LINUX_BEEP_TRACE",
	"SOURCE_LINUX_THEIA",
	"SOURCE_LINUX_SYSCALL_TRACE",
}

var sources20 = []string{
	"SOURCE_ANDROID_JAVA_CLEARSCOPE",
	"SOURCE_ANDROID_NATIVE_CLEARSCOPE",
	"SOURCE_FREEBSD_OPENBSM_TRACE",
	"SOURCE_FREEBSD_DTRACE_CADETS",
	"SOURCE_FREEBSD_TESLA_CADETS",
	"SOURCE_FREEBSD_LOOM_CADETS",
	"SOURCE_FREEBSD_MACIF_CADETS",
	"SOURCE_WINDOWS_DIFT_FAROS",
	"SOURCE_WINDOWS_PSA_FAROS",
	"SOURCE_WINDOWS_FIVEDIRECTIONS",
	"SOURCE_LINUX_AUDIT_TRACE",
	"SOURCE_LINUX_PROC_TRACE",
	"SOURCE_LINUX_BEEP_TRACE",
	"SOURCE_LINUX_THEIA",
	"SOURCE_WINDOWS_THEIA",
	"SOURCE_LINUX_SYSCALL_TRACE",
	"SOURCE_PVM_CADETS",
}

var srcSinkTypes19 = []string{
	"SRCSINK_ACCELEROMETER",
	"SRCSINK_TEMPERATURE",
	"SRCSINK_GYROSCOPE",
	"SRCSINK_MAGNETIC_FIELD",
	"SRCSINK_HEART_RATE",
	"SRCSINK_LIGHT",
	"SRCSINK_PROXIMITY",
	"SRCSINK_PRESSURE",
	"SRCSINK_RELATIVE_HUMIDITY",
	"SRCSINK_LINEAR_ACCELERATION",
	"SRCSINK_MOTION",
	"SRCSINK_STEP_DETECTOR",
	"SRCSINK_STEP_COUNTER",
	"SRCSINK_TILT_DETECTOR",
	"SRCSINK_ROTATION_VECTOR",
	"SRCSINK_GRAVITY",
	"SRCSINK_GEOMAGNETIC_ROTATION_VECTOR",
	"SRCSINK_GPS",
	"SRCSINK_AUDIO",
	"SRCSINK_SYSTEM_PROPERTY",
	"SRCSINK_ENV_VARIABLE",
	"SRCSINK_ACCESSIBILITY_SERVICE",
	"SRCSINK_ACTIVITY_MANAGEMENT",
	"SRCSINK_ALARM_SERVICE",
	"SRCSINK_ANDROID_TV",
	"SRCSINK_AUDIO_IO",
	"SRCSINK_BACKUP_MANAGER",
	"SRCSINK_BINDER",
	"SRCSINK_BLUETOOTH",
	"SRCSINK_BOOT_EVENT",
	"SRCSINK_BROADCAST_RECEIVER_MANAGEMENT",
	"SRCSINK_CAMERA",
	"SRCSINK_CLIPBOARD",
	"SRCSINK_COMPONENT_MANAGEMENT",
	"SRCSINK_CONTENT_PROVIDER",
	"SRCSINK_CONTENT_PROVIDER_MANAGEMENT",
	"SRCSINK_DATABASE",
	"SRCSINK_DEVICE_ADMIN",
	"SRCSINK_DEVICE_SEARCH",
	"SRCSINK_DEVICE_USER",
	"SRCSINK_DISPLAY",
	"SRCSINK_DROPBOX",
	"SRCSINK_EMAIL",
	"SRCSINK_EXPERIMENTAL",
	"SRCSINK_FILE",
	"SRCSINK_FILE_SYSTEM",
	"SRCSINK_FILE_SYSTEM_MANAGEMENT",
	"SRCSINK_FINGERPRINT",
	"SRCSINK_FLASHLIGHT",
	"SRCSINK_GATEKEEPER",
	"SRCSINK_HDMI",
	"SRCSINK_IDLE_DOCK_SCREEN",
	"SRCSINK_IMS",
	"SRCSINK_INFRARED",
	"SRCSINK_INSTALLED_PACKAGES",
	"SRCSINK_JSSE_TRUST_MANAGER",
	"SRCSINK_KEYCHAIN",
	"SRCSINK_KEYGUARD",
	"SRCSINK_LOCATION",
	"SRCSINK_MACHINE_LEARNING",
	"SRCSINK_MEDIA",
	"SRCSINK_MEDIA_CAPTURE",
	"SRCSINK_MEDIA_LOCAL_MANAGEMENT",
	"SRCSINK_MEDIA_LOCAL_PLAYBACK",
	"SRCSINK_MEDIA_NETWORK_CONNECTION",
	"SRCSINK_MEDIA_REMOTE_PLAYBACK",
	"SRCSINK_MIDI",
	"SRCSINK_NATIVE",
	"SRCSINK_NETWORK",
	"SRCSINK_NETWORK_MANAGEMENT",
	"SRCSINK_NFC",
	"SRCSINK_NOTIFICATION",
	"SRCSINK_PAC_PROXY",
	"SRCSINK_PERMISSIONS",
	"SRCSINK_PERSISTANT_DATA",
	"SRCSINK_POSIX",
	"SRCSINK_POWER_MANAGEMENT",
	"SRCSINK_PRINT_SERVICE",
	"SRCSINK_PROCESS_MANAGEMENT",
	"SRCSINK_RECEIVER_MIRRORING",
	"SRCSINK_RPC",
	"SRCSINK_SCREEN_AUDIO_CAPTURE",
	"SRCSINK_SERIAL_PORT",
	"SRCSINK_SERVICE_CONNECTION",
	"SRCSINK_SERVICE_MANAGEMENT",
	"SRCSINK_SMS_MMS",
	"SRCSINK_SPEECH_INTERACTION",
	"SRCSINK_STATUS_BAR",
	"SRCSINK_SYNC_FRAMEWORK",
	"SRCSINK_TELEPHONY",
	"SRCSINK_TEST",
	"SRCSINK_TEXT_SERVICES",
	"SRCSINK_THREADING",
	"SRCSINK_TIME_EVENT",
	"SRCSINK_UI",
	"SRCSINK_UID_EVENT",
	"SRCSINK_UI_AUTOMATION",
	"SRCSINK_UI_MODE",
	"SRCSINK_UI_RPC",
	"SRCSINK_USAGE_STATS",
	"SRCSINK_USB",
	"SRCSINK_USER_ACCOUNTS_MANAGEMENT",
	"SRCSINK_USER_INPUT",
	"SRCSINK_VIBRATOR",
	"SRCSINK_WAKE_LOCK",
	"SRCSINK_WALLPAPER_MANAGER",
	"SRCSINK_WAP",
	"SRCSINK_WEB_BROWSER",
	"SRCSINK_WIDGETS",
	"SRCSINK_IPC",
	"SRCSINK_UNKNOWN",
}

var srcSinkTypes20 = []string{
	"SRCSINK_ACCELEROMETER",
	"SRCSINK_TEMPERATURE",
	"SRCSINK_GYROSCOPE",
	"SRCSINK_MAGNETIC_FIELD",
	"SRCSINK_HEART_RATE",
	"SRCSINK_LIGHT",
	"SRCSINK_PROXIMITY",
	"SRCSINK_PRESSURE",
	"SRCSINK_RELATIVE_HUMIDITY",
	"SRCSINK_LINEAR_ACCELERATION",
	"SRCSINK_MOTION",
	"SRCSINK_STEP_DETECTOR",
	"SRCSINK_STEP_COUNTER",
	"SRCSINK_TILT_DETECTOR",
	"SRCSINK_ROTATION_VECTOR",
	"SRCSINK_GRAVITY",
	"SRCSINK_GEOMAGNETIC_ROTATION_VECTOR",
	"SRCSINK_GPS",
	"SRCSINK_AUDIO",
	"SRCSINK_SYSTEM_PROPERTY",
	"SRCSINK_ENV_VARIABLE",
	"SRCSINK_ACCESSIBILITY_SERVICE",
	"SRCSINK_ACTIVITY_MANAGEMENT",
	"SRCSINK_ALARM_SERVICE",
	"SRCSINK_ANDROID_TV",
	"SRCSINK_AUDIO_IO",
	"SRCSINK_BACKUP_MANAGER",
	"SRCSINK_BINDER",
	"SRCSINK_BLUETOOTH",
	"SRCSINK_BOOT_EVENT",
	"SRCSINK_BROADCAST_RECEIVER_MANAGEMENT",
	"SRCSINK_CAMERA",
	"SRCSINK_CLIPBOARD",
	"SRCSINK_COMPONENT_MANAGEMENT",
	"SRCSINK_CONTENT_PROVIDER",
	"SRCSINK_CONTENT_PROVIDER_MANAGEMENT",
	"SRCSINK_DATABASE",
	"SRCSINK_DEVICE_ADMIN",
	"SRCSINK_DEVICE_SEARCH",
	"SRCSINK_DEVICE_USER",
	"SRCSINK_DISPLAY",
	"SRCSINK_DROPBOX",
	"SRCSINK_EMAIL",
	"SRCSINK_EXPERIMENTAL",
	"SRCSINK_FILE",
	"SRCSINK_FILE_SYSTEM",
	"SRCSINK_FILE_SYSTEM_MANAGEMENT",
	"SRCSINK_FINGERPRINT",
	"SRCSINK_FLASHLIGHT",
	"SRCSINK_GATEKEEPER",
	"SRCSINK_HDMI",
	"SRCSINK_IDLE_DOCK_SCREEN",
	"SRCSINK_IMS",
	"SRCSINK_INFRARED",
	"SRCSINK_INSTALLED_PACKAGES",
	"SRCSINK_JSSE_TRUST_MANAGER",
	"SRCSINK_KEYCHAIN",
	"SRCSINK_KEYGUARD",
	"SRCSINK_LOCATION",
	"SRCSINK_MACHINE_LEARNING",
	"SRCSINK_MEDIA",
	"SRCSINK_MEDIA_CAPTURE",
	"SRCSINK_MEDIA_LOCAL_MANAGEMENT",
	"SRCSINK_MEDIA_LOCAL_PLAYBACK",
	"SRCSINK_MEDIA_NETWORK_CONNECTION",
	"SRCSINK_MEDIA_REMOTE_PLAYBACK",
	"SRCSINK_MIDI",
	"SRCSINK_NATIVE",
	"SRCSINK_NETWORK",
	"SRCSINK_NETWORK_MANAGEMENT",
	"SRCSINK_NFC",
	"SRCSINK_NOTIFICATION",
	"SRCSINK_PAC_PROXY",
	"SRCSINK_PERMISSIONS",
	"SRCSINK_PERSISTANT_DATA",
	"SRCSINK_POSIX",
	"SRCSINK_POWER_MANAGEMENT",
	"SRCSINK_PRINT_SERVICE",
	"SRCSINK_PROCESS_MANAGEMENT",
	"SRCSINK_RECEIVER_MIRRORING",
	"SRCSINK_RPC",
	"SRCSINK_SCREEN_AUDIO_CAPTURE",
	"SRCSINK_SERIAL_PORT",
	"SRCSINK_SERVICE_CONNECTION",
	"SRCSINK_SERVICE_MANAGEMENT",
	"SRCSINK_SMS_MMS",
	"SRCSINK_SPEECH_INTERACTION",
	"SRCSINK_STATUS_BAR",
	"SRCSINK_SYNC_FRAMEWORK",
	"SRCSINK_TELEPHONY",
	"SRCSINK_TEST",
	"SRCSINK_TEXT_SERVICES",
	"SRCSINK_THREADING",
	"SRCSINK_TIME_EVENT",
	"SRCSINK_UI",
	"SRCSINK_UID_EVENT",
	"SRCSINK_UI_AUTOMATION",
	"SRCSINK_UI_MODE",
	"SRCSINK_UI_RPC",
	"SRCSINK_USAGE_STATS",
	"SRCSINK_USB",
	"SRCSINK_USER_ACCOUNTS_MANAGEMENT",
	"SRCSINK_USER_INPUT",
	"SRCSINK_VIBRATOR",
	"SRCSINK_WAKE_LOCK",
	"SRCSINK_WALLPAPER_MANAGER",
	"SRCSINK_WAP",
	"SRCSINK_WEB_BROWSER",
	"SRCSINK_WIDGETS",
	"SRCSINK_IPC",
	"SRCSINK_ACCOUNTS",
	"SRCSINK_ADVERTISING_ID",
	"SRCSINK_APP_WIDGETS",
	"SRCSINK_CONTACTS",
	"SRCSINK_CALENDAR",
	"SRCSINK_CALL_LOG",
	"SRCSINK_BROWSER_HISTORY",
	"SRCSINK_DEVICE_ID",
	"SRCSINK_PHONE_NUMBER",
	"SRCSINK_SIM_SERIAL",
	"SRCSINK_WIFI_STATE",
	"SRCSINK_CELL_LOCATION",
	"SRCSINK_SENSOR_OTHER",
	"SRCSINK_UNKNOWN",
}
