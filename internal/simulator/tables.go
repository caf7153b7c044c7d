package simulator

import "github.com/argussky/argus/internal/category"

// cameras is the fixed CCTV location table covering both terminals, the
// runways, cargo, parking, and staff zones.
var cameras = []Camera{
	{ID: "CAM-T1-DEP-001", Name: "Terminal 1 Departures A", Zone: "T1", Area: "departure", Lat: 37.4691, Lng: 126.4505},
	{ID: "CAM-T1-DEP-002", Name: "Terminal 1 Departures B", Zone: "T1", Area: "departure", Lat: 37.4693, Lng: 126.4510},
	{ID: "CAM-T1-ARR-001", Name: "Terminal 1 Arrivals", Zone: "T1", Area: "arrival", Lat: 37.4689, Lng: 126.4502},
	{ID: "CAM-T1-SEC-001", Name: "Terminal 1 Security Checkpoint", Zone: "T1", Area: "security", Lat: 37.4690, Lng: 126.4507},
	{ID: "CAM-T1-BAG-001", Name: "Terminal 1 Baggage Claim", Zone: "T1", Area: "baggage", Lat: 37.4688, Lng: 126.4500},
	{ID: "CAM-T2-DEP-001", Name: "Terminal 2 Departures", Zone: "T2", Area: "departure", Lat: 37.4602, Lng: 126.4407},
	{ID: "CAM-T2-ARR-001", Name: "Terminal 2 Arrivals", Zone: "T2", Area: "arrival", Lat: 37.4600, Lng: 126.4405},
	{ID: "CAM-T2-SEC-001", Name: "Terminal 2 Security Checkpoint", Zone: "T2", Area: "security", Lat: 37.4601, Lng: 126.4406},
	{ID: "CAM-DF-001", Name: "Duty Free Zone A", Zone: "DF", Area: "retail", Lat: 37.4695, Lng: 126.4515},
	{ID: "CAM-DF-002", Name: "Duty Free Zone B", Zone: "DF", Area: "retail", Lat: 37.4696, Lng: 126.4518},
	{ID: "CAM-RW-N-001", Name: "Runway North", Zone: "RW", Area: "runway", Lat: 37.4750, Lng: 126.4400},
	{ID: "CAM-RW-S-001", Name: "Runway South", Zone: "RW", Area: "runway", Lat: 37.4550, Lng: 126.4400},
	{ID: "CAM-RW-E-001", Name: "Runway East", Zone: "RW", Area: "runway", Lat: 37.4650, Lng: 126.4550},
	{ID: "CAM-CG-001", Name: "Cargo Terminal Entrance", Zone: "CG", Area: "cargo", Lat: 37.4580, Lng: 126.4350},
	{ID: "CAM-CG-002", Name: "Cargo Inspection Bay", Zone: "CG", Area: "cargo", Lat: 37.4582, Lng: 126.4355},
	{ID: "CAM-CG-F-001", Name: "Cargo Perimeter Fence", Zone: "CG", Area: "perimeter", Lat: 37.4578, Lng: 126.4345},
	{ID: "CAM-PK-001", Name: "Short-Term Parking Entrance", Zone: "PK", Area: "parking", Lat: 37.4685, Lng: 126.4490},
	{ID: "CAM-PK-002", Name: "Long-Term Parking", Zone: "PK", Area: "parking", Lat: 37.4680, Lng: 126.4485},
	{ID: "CAM-ST-001", Name: "Staff Entrance", Zone: "ST", Area: "staff", Lat: 37.4670, Lng: 126.4480},
	{ID: "CAM-ST-002", Name: "Staff Lounge", Zone: "ST", Area: "staff", Lat: 37.4672, Lng: 126.4482},
}

// eventTypes is the fixed detection catalog with per-type severity bases
// and confidence ranges.
var eventTypes = []EventType{
	{
		ID: "weapon_detected", Category: category.Terror, BaseSeverity: 95,
		Title: "Suspected Weapon Detected",
		Descriptions: []string{
			"Metal detector response, further inspection required",
			"Object with suspicious shape detected",
			"X-ray scan flagged a dangerous object pattern",
		},
		ConfidenceMin: 0.85, ConfidenceMax: 0.95,
		Areas: []string{"security", "departure", "arrival"},
	},
	{
		ID: "abandoned_bag", Category: category.Terror, BaseSeverity: 80,
		Title: "Abandoned Baggage Detected",
		Descriptions: []string{
			"Bag left unattended for over 15 minutes",
			"Unclaimed baggage, requesting explosives detection team",
			"Suspicious baggage found, zone lockdown advised",
		},
		ConfidenceMin: 0.80, ConfidenceMax: 0.92,
		Areas: []string{"departure", "arrival", "retail", "baggage"},
	},
	{
		ID: "crowd_anomaly", Category: category.Terror, BaseSeverity: 60,
		Title: "Crowd Anomaly Detected",
		Descriptions: []string{
			"Abnormal crowd density detected",
			"Sudden crowd movement pattern detected",
			"Signs of a panic situation detected",
		},
		ConfidenceMin: 0.70, ConfidenceMax: 0.85,
		Areas: []string{"departure", "arrival", "retail"},
	},
	{
		ID: "fighting_detected", Category: category.Terror, BaseSeverity: 70,
		Title: "Violent Behavior Detected",
		Descriptions: []string{
			"Physical altercation between passengers detected",
			"Aggressive behavior pattern detected",
			"Security officer dispatch required",
		},
		ConfidenceMin: 0.75, ConfidenceMax: 0.90,
		Areas: []string{"departure", "arrival", "retail", "baggage"},
	},
	{
		ID: "drone_detected", Category: category.Drone, BaseSeverity: 85,
		Title: "Unidentified Drone Detected",
		Descriptions: []string{
			"Drone flight detected near the runway",
			"Unauthorized UAV detected, flight operations on alert",
			"Drone intrusion, response team dispatched",
		},
		ConfidenceMin: 0.80, ConfidenceMax: 0.95,
		Areas: []string{"runway", "perimeter"},
	},
	{
		ID: "uav_tracking", Category: category.Drone, BaseSeverity: 75,
		Title: "UAV Tracking In Progress",
		Descriptions: []string{
			"Tracking drone flight path",
			"Analyzing UAV flight pattern",
			"Backtracking drone launch point",
		},
		ConfidenceMin: 0.70, ConfidenceMax: 0.88,
		Areas: []string{"runway", "perimeter"},
	},
	{
		ID: "perimeter_breach", Category: category.Smuggling, BaseSeverity: 75,
		Title: "Secure Zone Intrusion Detected",
		Descriptions: []string{
			"Fence intrusion attempt detected",
			"Unauthorized person approaching secure zone",
			"Abnormal movement along the perimeter",
		},
		ConfidenceMin: 0.82, ConfidenceMax: 0.94,
		Areas: []string{"perimeter", "cargo", "runway"},
	},
	{
		ID: "suspicious_vehicle", Category: category.Smuggling, BaseSeverity: 65,
		Title: "Suspicious Vehicle Detected",
		Descriptions: []string{
			"Unregistered vehicle attempting to enter secure zone",
			"Suspicious vehicle parked for an extended period",
			"Abnormal vehicle movement pattern detected",
		},
		ConfidenceMin: 0.75, ConfidenceMax: 0.88,
		Areas: []string{"parking", "cargo", "perimeter"},
	},
	{
		ID: "smuggling_attempt", Category: category.Smuggling, BaseSeverity: 80,
		Title: "Suspected Smuggling Attempt",
		Descriptions: []string{
			"X-ray scan flagged an anomalous object",
			"Suspicious behavior in the customs area",
			"Irregularity found during cargo inspection",
		},
		ConfidenceMin: 0.78, ConfidenceMax: 0.90,
		Areas: []string{"cargo", "baggage", "security"},
	},
	{
		ID: "unauthorized_access", Category: category.Insider, BaseSeverity: 70,
		Title: "Unauthorized Access Attempt",
		Descriptions: []string{
			"Unauthorized access to staff-only area detected",
			"Person without clearance attempting entry",
			"Unauthorized entry into restricted security zone",
		},
		ConfidenceMin: 0.80, ConfidenceMax: 0.92,
		Areas: []string{"staff", "cargo", "security"},
	},
	{
		ID: "tailgating", Category: category.Insider, BaseSeverity: 55,
		Title: "Tailgating Detected",
		Descriptions: []string{
			"Multiple entries after a single authentication",
			"Tailgating attempt detected",
			"Door held open for an abnormal duration",
		},
		ConfidenceMin: 0.85, ConfidenceMax: 0.95,
		Areas: []string{"staff", "security"},
	},
	{
		ID: "loitering", Category: category.Insider, BaseSeverity: 45,
		Title: "Loitering Detected",
		Descriptions: []string{
			"Extended loitering in a specific zone",
			"Suspicious observation behavior detected",
			"Abnormal movement pattern detected",
		},
		ConfidenceMin: 0.65, ConfidenceMax: 0.80,
		Areas: []string{"departure", "arrival", "staff", "cargo"},
	},
	{
		ID: "tampering_detected", Category: category.Cyber, BaseSeverity: 85,
		Title: "Equipment Tampering Detected",
		Descriptions: []string{
			"Unauthorized access to network equipment detected",
			"Security camera tampering attempt detected",
			"System cable tampering attempt",
		},
		ConfidenceMin: 0.80, ConfidenceMax: 0.92,
		Areas: []string{"staff", "security"},
	},
}

// eventTypeIndex resolves trigger requests by id.
var eventTypeIndex = func() map[string]EventType {
	index := make(map[string]EventType, len(eventTypes))
	for _, et := range eventTypes {
		index[et.ID] = et
	}
	return index
}()
