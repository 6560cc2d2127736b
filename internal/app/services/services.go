package services

// Services defined in this package:
// - EnrollmentService: arbitrates enrollment requests against seat capacity,
//   the semester credit cap, and the student's schedule, and handles
//   withdrawals
// - OfferingService: manages the offering catalog
