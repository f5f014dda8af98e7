package apk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apktoolManifest = `<?xml version="1.0" encoding="utf-8" standalone="no"?>
<manifest xmlns:android="http://schemas.android.com/apk/res/android" package="com.example.vulnerable" android:sharedUserId="com.example.shared">
    <uses-permission android:name="android.permission.INTERNET"/>
    <uses-permission android:name="android.permission.READ_SMS"/>
    <uses-permission-sdk-23 android:name="android.permission.CAMERA"/>
    <uses-permission android:name="android.permission.INTERNET"/>
    <permission android:name="com.example.vulnerable.PRIVATE" android:protectionLevel="normal"/>
    <application android:label="@string/app_name" android:debuggable="true" android:allowBackup="true" android:usesCleartextTraffic="true">
        <activity android:name=".MainActivity" android:exported="true">
            <intent-filter>
                <action android:name="android.intent.action.MAIN"/>
                <category android:name="android.intent.category.LAUNCHER"/>
            </intent-filter>
        </activity>
        <activity android:name="DeepLinkActivity">
            <intent-filter android:autoVerify="false">
                <action android:name="android.intent.action.VIEW"/>
                <data android:scheme="example" android:host="open"/>
            </intent-filter>
        </activity>
        <service android:name="com.example.vulnerable.SyncService" android:exported="false"/>
        <receiver android:name=".BootReceiver"/>
        <provider android:name=".DataProvider" android:authorities="com.example.vulnerable.data" android:exported="true"/>
        <uses-library android:name="org.apache.http.legacy" android:required="false"/>
    </application>
</manifest>`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(apktoolManifest))
	require.NoError(t, err)

	assert.Equal(t, "com.example.vulnerable", m.Package)
	assert.Equal(t, "com.example.shared", m.SharedUserID)
	assert.Equal(t, []string{
		"android.permission.INTERNET",
		"android.permission.READ_SMS",
		"android.permission.CAMERA",
	}, m.PermissionNames())

	require.Len(t, m.Permissions, 1)
	assert.Equal(t, "normal", m.Permissions[0].ProtectionLevel)

	assert.Equal(t, []string{"com.example.vulnerable.MainActivity", "com.example.vulnerable.DeepLinkActivity"}, m.componentNames(m.Application.Activities))
	assert.Equal(t, []string{"com.example.vulnerable.SyncService"}, m.componentNames(m.Application.Services))
	assert.Equal(t, []string{"com.example.vulnerable.BootReceiver"}, m.componentNames(m.Application.Receivers))
	assert.Equal(t, []string{"org.apache.http.legacy"}, m.LibraryNames())

	provider := m.Application.Providers[0]
	assert.Equal(t, "com.example.vulnerable.data", provider.Authorities)

	deepLink := m.Application.Activities[1].IntentFilters[0]
	assert.Equal(t, "false", deepLink.AutoVerify)
	assert.Equal(t, "example", deepLink.Data[0].Scheme)

	debuggable, set := BoolAttr(m.Application.Debuggable)
	assert.True(t, debuggable)
	assert.True(t, set)
}

func TestParseManifest_Invalid(t *testing.T) {
	_, err := ParseManifest([]byte("<manifest><application>"))
	require.Error(t, err)
}

func TestBoolAttr(t *testing.T) {
	tests := []struct {
		value       string
		expectedVal bool
		expectedSet bool
	}{
		{"", false, false},
		{"true", true, true},
		{"TRUE", true, true},
		{"false", false, true},
		{"0", false, true},
		{"@bool/is_debug", false, false},
		{" @bool/backup", false, false},
		{"?attr/flag", false, false},
	}

	for _, test := range tests {
		t.Run(test.value, func(t *testing.T) {
			val, set := BoolAttr(test.value)
			assert.Equal(t, test.expectedVal, val)
			assert.Equal(t, test.expectedSet, set)
		})
	}
}

func TestIntAttr(t *testing.T) {
	assert.Equal(t, 21, IntAttr("21"))
	assert.Equal(t, 33, IntAttr("0x21"))
	assert.Equal(t, 0, IntAttr("@integer/min_sdk"))
	assert.Equal(t, 0, IntAttr(""))
}

func TestResolveName(t *testing.T) {
	m := Manifest{Package: "com.example"}
	assert.Equal(t, "com.example.Main", m.ResolveName(".Main"))
	assert.Equal(t, "com.example.Main", m.ResolveName("Main"))
	assert.Equal(t, "org.other.Main", m.ResolveName("org.other.Main"))
	assert.Empty(t, m.ResolveName(""))
}
