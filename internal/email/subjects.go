package email

const (
	subjectReportAck             = "Ihre Meldung ist eingegangen"
	subjectMunicipalityDigestFmt = "Green Bin Tagesübersicht für %s"
)
